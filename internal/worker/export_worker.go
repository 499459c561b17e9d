package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/sheets"
)

// LedgerReader loads the rows an event refers to.
type LedgerReader interface {
	GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error)
	GetAccountIncludingDeleted(ctx context.Context, ownerID, id int64) (core.Account, error)
}

// Consumer delivers ledger events to a handler until ctx ends.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.LedgerEvent) error) error
}

// ExportWorker mirrors ledger events into a spreadsheet.
type ExportWorker struct {
	ledger    LedgerReader
	writer    sheets.LedgerWriter
	heartbeat time.Duration
	logger    *log.Logger

	exported atomic.Int64
	skipped  atomic.Int64
	failed   atomic.Int64
}

func NewExportWorker(ledger LedgerReader, writer sheets.LedgerWriter, heartbeat time.Duration, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		ledger:    ledger,
		writer:    writer,
		heartbeat: heartbeat,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes events and logs a heartbeat until ctx is cancelled or the
// consumer fails.
func (w *ExportWorker) Run(ctx context.Context, consumer Consumer) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Consume(gctx, w.HandleEvent)
	})
	g.Go(func() error {
		ticker := time.NewTicker(w.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				w.logHeartbeat(gctx)
			}
		}
	})

	err := g.Wait()
	w.logHeartbeat(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *ExportWorker) logHeartbeat(ctx context.Context) {
	exported, skipped, failed := w.Stats()
	w.logger.InfoContext(ctx, "Export worker heartbeat",
		"exported", exported,
		"skipped", skipped,
		"failed", failed)
}

// Stats returns the exported, skipped and failed event counts.
func (w *ExportWorker) Stats() (exported, skipped, failed int64) {
	return w.exported.Load(), w.skipped.Load(), w.failed.Load()
}

// HandleEvent exports one event. Events whose rows have since disappeared
// are skipped; any other failure is returned so the delivery is requeued.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	var (
		row sheets.LedgerRow
		err error
	)
	switch event.Type {
	case amqp.EventTransactionCreated:
		row, err = w.postingRow(ctx, event)
	case amqp.EventAccountDeleted:
		row, err = w.closureRow(ctx, event)
	default:
		err = fmt.Errorf("unsupported event type %q", event.Type)
	}

	if errors.Is(err, core.ErrNotFound) {
		w.skipped.Add(1)
		w.logger.WarnContext(ctx, "Ledger event refers to missing rows, skipping",
			log.FieldEventID, event.ID,
			log.FieldEventType, string(event.Type),
			log.FieldError, err)
		return nil
	}
	if err == nil {
		err = w.writer.AppendRow(ctx, row)
	}
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("export %s %s: %w", event.Type, event.ID, err)
	}

	w.exported.Add(1)
	w.logger.InfoContext(ctx, "Ledger event exported",
		log.FieldEventID, event.ID,
		log.FieldEventType, string(event.Type),
		log.FieldAccountID, event.AccountID)
	return nil
}

func (w *ExportWorker) postingRow(ctx context.Context, event *amqp.LedgerEvent) (sheets.LedgerRow, error) {
	t, err := w.ledger.GetTransaction(ctx, event.OwnerID, event.TransactionID)
	if err != nil {
		return sheets.LedgerRow{}, err
	}
	a, err := w.ledger.GetAccountIncludingDeleted(ctx, event.OwnerID, t.AccountID)
	if err != nil {
		return sheets.LedgerRow{}, err
	}

	row := sheets.LedgerRow{
		EventID:       event.ID,
		Kind:          sheets.RowPosting,
		Date:          t.Date,
		OwnerID:       event.OwnerID,
		AccountID:     a.ID,
		BankName:      a.BankName,
		AccountNumber: a.MaskedNumber(),
		Type:          t.Type,
		Amount:        t.SignedAmount(),
		Description:   t.Description,
	}
	if t.Expense != nil {
		row.Category = t.Expense.CategoryName
	}
	return row, nil
}

func (w *ExportWorker) closureRow(ctx context.Context, event *amqp.LedgerEvent) (sheets.LedgerRow, error) {
	a, err := w.ledger.GetAccountIncludingDeleted(ctx, event.OwnerID, event.AccountID)
	if err != nil {
		return sheets.LedgerRow{}, err
	}

	closedAt := event.Timestamp
	if a.DeletedAt != nil {
		closedAt = *a.DeletedAt
	}
	return sheets.LedgerRow{
		EventID:       event.ID,
		Kind:          sheets.RowClosure,
		Date:          core.DateOf(closedAt),
		OwnerID:       event.OwnerID,
		AccountID:     a.ID,
		BankName:      a.BankName,
		AccountNumber: a.MaskedNumber(),
		Description:   fmt.Sprintf("Account closed, %d transactions removed", event.DeletedTransactions),
	}, nil
}
