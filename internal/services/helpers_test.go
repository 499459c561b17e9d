package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/storage"
)

const (
	owner      int64 = 1
	otherOwner int64 = 2

	categoryFood      int64 = 1
	categoryGroceries int64 = 2
	categoryHousing   int64 = 3
)

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []*amqp.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*amqp.LedgerEvent(nil), p.events...)
}

func openAccount(t *testing.T, svc *AccountService, ownerID int64, balanceCents int64) core.AccountView {
	t.Helper()
	a, err := svc.Create(context.Background(), ownerID, core.AccountInput{
		BankName:       "Test Bank",
		Type:           core.AccountChecking,
		AccountNumber:  "1234567890",
		InitialBalance: core.NewMoney(balanceCents),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func expenseInput(accountID, cents int64, date core.Date, category int64, sub string) core.TransactionInput {
	subAmount := core.NewMoney(cents)
	return core.TransactionInput{
		AccountID:         accountID,
		Type:              core.TransactionExpense,
		Description:       "expense",
		Amount:            core.NewMoney(cents),
		Date:              date,
		CategoryID:        &category,
		SubCategoryName:   sub,
		SubCategoryAmount: &subAmount,
	}
}

func revenueInput(accountID, cents int64, date core.Date) core.TransactionInput {
	return core.TransactionInput{
		AccountID:   accountID,
		Type:        core.TransactionRevenue,
		Description: "salary",
		Amount:      core.NewMoney(cents),
		Date:        date,
	}
}

func mustPost(t *testing.T, svc *TransactionService, ownerID int64, in core.TransactionInput) PostingResult {
	t.Helper()
	res, err := svc.Create(context.Background(), ownerID, in)
	if err != nil {
		t.Fatalf("post transaction: %v", err)
	}
	return res
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
}
