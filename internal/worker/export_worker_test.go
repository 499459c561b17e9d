package worker

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/sheets"
	"finledger/internal/sheets/memory"
	"finledger/internal/storage"
)

func newLedger(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func seedPosting(t *testing.T, store *storage.Store) (core.Account, core.Transaction) {
	t.Helper()
	ctx := context.Background()
	a, err := store.CreateAccount(ctx, core.AccountInput{
		BankName:       "Acme",
		Type:           core.AccountChecking,
		AccountNumber:  "1234567890",
		InitialBalance: core.NewMoney(10000),
	}.Account(1))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	category := int64(2)
	sub := core.NewMoney(2550)
	in := core.TransactionInput{
		AccountID:         a.ID,
		Type:              core.TransactionExpense,
		Description:       "weekly shop",
		Amount:            core.NewMoney(2550),
		Date:              core.NewDate(2024, 3, 9),
		CategoryID:        &category,
		SubCategoryAmount: &sub,
	}
	in.Normalize()
	txn, _, err := store.PostTransaction(ctx, 1, in.Transaction())
	if err != nil {
		t.Fatalf("post transaction: %v", err)
	}
	return a, txn
}

func TestExportWorker_HandleEvent(t *testing.T) {
	store := newLedger(t)
	a, txn := seedPosting(t, store)
	ctx := context.Background()

	tests := []struct {
		name     string
		event    *amqp.LedgerEvent
		wantKind sheets.RowKind
		check    func(t *testing.T, row sheets.LedgerRow)
	}{
		{
			name:     "transaction created",
			event:    amqp.NewTransactionCreatedEvent(1, a.ID, txn.ID),
			wantKind: sheets.RowPosting,
			check: func(t *testing.T, row sheets.LedgerRow) {
				if row.Amount.Cents != -2550 || row.Category != "Groceries" || row.AccountNumber != "123456****" {
					t.Errorf("posting row = %+v", row)
				}
				if row.Date.String() != "2024-03-09" {
					t.Errorf("Date = %s", row.Date)
				}
			},
		},
		{
			name:     "account deleted",
			event:    amqp.NewAccountDeletedEvent(1, a.ID, 1),
			wantKind: sheets.RowClosure,
			check: func(t *testing.T, row sheets.LedgerRow) {
				if row.BankName != "Acme" || row.Description != "Account closed, 1 transactions removed" {
					t.Errorf("closure row = %+v", row)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := memory.New()
			w := NewExportWorker(store, out, time.Minute, testLogger())
			if err := w.HandleEvent(ctx, tt.event); err != nil {
				t.Fatalf("HandleEvent() error = %v", err)
			}
			rows := out.Rows()
			if len(rows) != 1 || rows[0].Kind != tt.wantKind || rows[0].EventID != tt.event.ID {
				t.Fatalf("rows = %+v", rows)
			}
			tt.check(t, rows[0])
		})
	}
}

func TestExportWorker_SkipsMissingRows(t *testing.T) {
	store := newLedger(t)
	a, txn := seedPosting(t, store)
	out := memory.New()
	w := NewExportWorker(store, out, time.Minute, testLogger())
	ctx := context.Background()

	// Another owner cannot see the posting.
	if err := w.HandleEvent(ctx, amqp.NewTransactionCreatedEvent(2, a.ID, txn.ID)); err != nil {
		t.Fatalf("HandleEvent() error = %v, want skip", err)
	}
	if err := w.HandleEvent(ctx, amqp.NewTransactionCreatedEvent(1, a.ID, txn.ID+100)); err != nil {
		t.Fatalf("HandleEvent() error = %v, want skip", err)
	}

	if out.Len() != 0 {
		t.Errorf("exported %d rows for missing postings", out.Len())
	}
	if exported, skipped, failed := w.Stats(); exported != 0 || skipped != 2 || failed != 0 {
		t.Errorf("Stats() = %d/%d/%d, want 0/2/0", exported, skipped, failed)
	}
}

type failingWriter struct{}

func (failingWriter) AppendRow(context.Context, sheets.LedgerRow) error {
	return errors.New("quota exceeded")
}

func TestExportWorker_WriterFailureIsReturned(t *testing.T) {
	store := newLedger(t)
	a, txn := seedPosting(t, store)
	w := NewExportWorker(store, failingWriter{}, time.Minute, testLogger())

	err := w.HandleEvent(context.Background(), amqp.NewTransactionCreatedEvent(1, a.ID, txn.ID))
	if err == nil {
		t.Fatal("HandleEvent() should fail when the sheet cannot be written")
	}
	if _, _, failed := w.Stats(); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}

type scriptedConsumer struct {
	events []*amqp.LedgerEvent
	errs   []error
}

func (c *scriptedConsumer) Consume(ctx context.Context, handler func(context.Context, *amqp.LedgerEvent) error) error {
	for _, e := range c.events {
		c.errs = append(c.errs, handler(ctx, e))
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestExportWorker_Run(t *testing.T) {
	store := newLedger(t)
	a, txn := seedPosting(t, store)
	out := memory.New()
	w := NewExportWorker(store, out, 10*time.Millisecond, testLogger())

	consumer := &scriptedConsumer{events: []*amqp.LedgerEvent{
		amqp.NewTransactionCreatedEvent(1, a.ID, txn.ID),
		amqp.NewAccountDeletedEvent(1, a.ID, 1),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := w.Run(ctx, consumer); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Len() != 2 {
		t.Errorf("exported %d rows, want 2", out.Len())
	}
	for _, err := range consumer.errs {
		if err != nil {
			t.Errorf("handler error = %v", err)
		}
	}
}
