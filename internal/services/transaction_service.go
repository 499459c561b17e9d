package services

import (
	"context"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/storage"
)

// DefaultListPageSize applies to transaction listings without a limit.
const DefaultListPageSize = 20

type TransactionStore interface {
	PostTransaction(ctx context.Context, ownerID int64, t core.Transaction) (core.Transaction, core.Money, error)
	ListTransactions(ctx context.Context, q storage.TransactionQuery) ([]core.TransactionEntry, int, error)
}

// PostingResult is a committed posting and the account balance it produced.
type PostingResult struct {
	Transaction core.Transaction `json:"transaction"`
	Balance     core.Money       `json:"balance"`
}

type TransactionService struct {
	store     TransactionStore
	publisher Publisher
}

func NewTransactionService(store TransactionStore, publisher Publisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

// Create posts a transaction. The row, its expense detail and the balance
// change commit together or not at all.
func (s *TransactionService) Create(ctx context.Context, ownerID int64, in core.TransactionInput) (PostingResult, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return PostingResult{}, err
	}

	t, balance, err := s.store.PostTransaction(ctx, ownerID, in.Transaction())
	if err != nil {
		return PostingResult{}, err
	}

	fields := log.NewFields().
		WithOwner(ownerID).
		WithPosting(t.AccountID, t.ID, string(t.Type), t.Amount.Cents)
	log.FromContext(ctx).WithComponent(log.ComponentTransaction).InfoContext(ctx, "Transaction posted", fields.ToSlice()...)

	publishEvent(ctx, s.publisher, amqp.NewTransactionCreatedEvent(ownerID, t.AccountID, t.ID))
	return PostingResult{Transaction: t, Balance: balance}, nil
}

// List returns one page of the owner's postings across all live accounts.
func (s *TransactionService) List(ctx context.Context, ownerID int64, filter string, limit, offset int) (core.Page[core.TransactionEntry], error) {
	f, err := core.ParseTransactionFilter(filter)
	if err != nil {
		return core.Page[core.TransactionEntry]{}, err
	}
	page, err := core.NewPagination(limit, offset, DefaultListPageSize)
	if err != nil {
		return core.Page[core.TransactionEntry]{}, err
	}

	entries, total, err := s.store.ListTransactions(ctx, storage.TransactionQuery{
		OwnerID: ownerID,
		Filter:  f,
		Page:    page,
	})
	if err != nil {
		return core.Page[core.TransactionEntry]{}, err
	}
	return core.NewPage(entries, total, page), nil
}
