package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"finledger/internal/core"
)

const accountColumns = `id, owner_id, bank_name, account_type, branch_name, account_number, last4, balance_cents, created_at, deleted_at`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var (
		a         core.Account
		createdAt dbTime
		deletedAt dbTime
	)
	err := row.Scan(&a.ID, &a.OwnerID, &a.BankName, &a.Type, &a.BranchName, &a.AccountNumber,
		&a.Last4, &a.Balance.Cents, &createdAt, &deletedAt)
	if err != nil {
		return core.Account{}, err
	}
	a.CreatedAt = createdAt.Time.UTC()
	a.DeletedAt = deletedAt.ptr()
	return a, nil
}

// CreateAccount inserts a and returns it with its id and creation time.
func (s *Store) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.CreatedAt = s.now().UTC()
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO accounts (owner_id, bank_name, account_type, branch_name, account_number, last4, balance_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		a.OwnerID, a.BankName, string(a.Type), a.BranchName, a.AccountNumber, a.Last4, a.Balance.Cents, s.timeArg(a.CreatedAt),
	).Scan(&a.ID)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}

	slog.InfoContext(ctx, "Account saved",
		"account_id", a.ID,
		"owner_id", a.OwnerID,
		"account_number", a.MaskedNumber())

	return a, nil
}

// GetAccount returns a live account owned by ownerID.
func (s *Store) GetAccount(ctx context.Context, ownerID, id int64) (core.Account, error) {
	return s.getAccount(ctx, s.db, ownerID, id, false)
}

// GetAccountIncludingDeleted also returns soft-deleted accounts. Only the
// export worker and the delete ownership probe need them.
func (s *Store) GetAccountIncludingDeleted(ctx context.Context, ownerID, id int64) (core.Account, error) {
	return s.getAccount(ctx, s.db, ownerID, id, true)
}

func (s *Store) getAccount(ctx context.Context, q querier, ownerID, id int64, includeDeleted bool) (core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ? AND owner_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	a, err := scanAccount(q.QueryRowContext(ctx, s.rebind(query), id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.NotFoundf("account %d not found", id)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// ListAccounts returns the owner's live accounts, oldest first.
func (s *Store) ListAccounts(ctx context.Context, ownerID int64) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+accountColumns+` FROM accounts
		WHERE owner_id = ? AND deleted_at IS NULL
		ORDER BY id`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []core.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CountAccounts counts the owner's live accounts.
func (s *Store) CountAccounts(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*) FROM accounts WHERE owner_id = ? AND deleted_at IS NULL`), ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// UpdateAccount persists the descriptive fields of a. The balance column is
// never written here.
func (s *Store) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE accounts
		SET bank_name = ?, account_type = ?, branch_name = ?, account_number = ?, last4 = ?
		WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`),
		a.BankName, string(a.Type), a.BranchName, a.AccountNumber, a.Last4, a.ID, a.OwnerID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFoundf("account %d not found", a.ID)
	}
	return nil
}

// SoftDeleteAccount marks the account's transactions and then the account
// itself as deleted, all in one transaction.
func (s *Store) SoftDeleteAccount(ctx context.Context, ownerID, id int64) (core.AccountDeletion, error) {
	var result core.AccountDeletion
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		a, err := s.getAccount(ctx, tx, ownerID, id, true)
		if err != nil {
			return err
		}
		if a.IsDeleted() {
			return core.Conflictf("account %d is already deleted", id)
		}

		deletedAt := s.timeArg(s.now())
		res, err := tx.ExecContext(ctx, s.rebind(
			`UPDATE transactions SET deleted_at = ? WHERE account_id = ? AND deleted_at IS NULL`), deletedAt, id)
		if err != nil {
			return fmt.Errorf("soft delete transactions: %w", err)
		}
		count, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("count deleted transactions: %w", err)
		}

		if _, err := tx.ExecContext(ctx, s.rebind(
			`UPDATE accounts SET deleted_at = ? WHERE id = ? AND owner_id = ?`), deletedAt, id, ownerID); err != nil {
			return fmt.Errorf("soft delete account: %w", err)
		}

		result = core.AccountDeletion{DeletedAccountID: id, DeletedTransactionsCount: int(count)}
		return nil
	})
	if err != nil {
		return core.AccountDeletion{}, err
	}

	slog.InfoContext(ctx, "Account soft-deleted",
		"account_id", id,
		"owner_id", ownerID,
		"deleted_transactions", result.DeletedTransactionsCount)

	return result, nil
}
