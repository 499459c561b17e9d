package services

import (
	"context"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/storage"
)

// DefaultDetailPageSize is the number of postings shown with an account
// when the caller does not ask for a page size.
const DefaultDetailPageSize = 5

// AccountStore is the storage AccountService needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	GetAccount(ctx context.Context, ownerID, id int64) (core.Account, error)
	ListAccounts(ctx context.Context, ownerID int64) ([]core.Account, error)
	UpdateAccount(ctx context.Context, a core.Account) error
	SoftDeleteAccount(ctx context.Context, ownerID, id int64) (core.AccountDeletion, error)
	ListTransactions(ctx context.Context, q storage.TransactionQuery) ([]core.TransactionEntry, int, error)
}

type AccountService struct {
	store     AccountStore
	publisher Publisher
}

func NewAccountService(store AccountStore, publisher Publisher) *AccountService {
	return &AccountService{store: store, publisher: publisher}
}

// Create opens an account. The full number is stored; callers only ever see
// it masked.
func (s *AccountService) Create(ctx context.Context, ownerID int64, in core.AccountInput) (core.AccountView, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return core.AccountView{}, err
	}

	a, err := s.store.CreateAccount(ctx, in.Account(ownerID))
	if err != nil {
		return core.AccountView{}, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentAccount).InfoContext(ctx, "Account created",
		log.FieldOwnerID, ownerID,
		log.FieldAccountID, a.ID,
		"account_number", a.MaskedNumber())
	return core.NewAccountView(a), nil
}

func (s *AccountService) List(ctx context.Context, ownerID int64) ([]core.AccountView, error) {
	accounts, err := s.store.ListAccounts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]core.AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, core.NewAccountView(a))
	}
	return views, nil
}

// Detail returns the account with one page of its postings, newest first.
// A zero limit selects DefaultDetailPageSize.
func (s *AccountService) Detail(ctx context.Context, ownerID, accountID int64, limit, offset int) (core.AccountDetail, error) {
	page, err := core.NewPagination(limit, offset, DefaultDetailPageSize)
	if err != nil {
		return core.AccountDetail{}, err
	}

	a, err := s.store.GetAccount(ctx, ownerID, accountID)
	if err != nil {
		return core.AccountDetail{}, err
	}

	entries, total, err := s.store.ListTransactions(ctx, storage.TransactionQuery{
		OwnerID:   ownerID,
		AccountID: accountID,
		Filter:    core.FilterAll,
		Page:      page,
	})
	if err != nil {
		return core.AccountDetail{}, err
	}

	return core.AccountDetail{
		AccountView:  core.NewAccountView(a),
		Transactions: core.NewPage(entries, total, page),
	}, nil
}

// Update merges the provided fields into the account.
func (s *AccountService) Update(ctx context.Context, ownerID, accountID int64, patch core.AccountPatch) (core.AccountView, error) {
	if err := patch.Validate(); err != nil {
		return core.AccountView{}, err
	}

	a, err := s.store.GetAccount(ctx, ownerID, accountID)
	if err != nil {
		return core.AccountView{}, err
	}
	patch.Apply(&a)

	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return core.AccountView{}, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentAccount).InfoContext(ctx, "Account updated",
		log.FieldOwnerID, ownerID,
		log.FieldAccountID, a.ID)
	return core.NewAccountView(a), nil
}

// Delete soft-deletes the account together with its postings.
func (s *AccountService) Delete(ctx context.Context, ownerID, accountID int64) (core.AccountDeletion, error) {
	res, err := s.store.SoftDeleteAccount(ctx, ownerID, accountID)
	if err != nil {
		return core.AccountDeletion{}, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentAccount).InfoContext(ctx, "Account deleted",
		log.FieldOwnerID, ownerID,
		log.FieldAccountID, accountID,
		"deleted_transactions", res.DeletedTransactionsCount)

	publishEvent(ctx, s.publisher, amqp.NewAccountDeletedEvent(ownerID, accountID, res.DeletedTransactionsCount))
	return res, nil
}
