package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"finledger/internal/core"
)

// PostTransaction records t against its account: the transaction row, its
// expense detail when present, and the new account balance commit together
// or not at all. It returns the stored transaction and the new balance.
func (s *Store) PostTransaction(ctx context.Context, ownerID int64, t core.Transaction) (core.Transaction, core.Money, error) {
	var balance core.Money
	t.CreatedAt = s.now().UTC()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current core.Money
		err := tx.QueryRowContext(ctx, s.rebind(
			`SELECT balance_cents FROM accounts WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`+s.forUpdate()),
			t.AccountID, ownerID).Scan(&current.Cents)
		if errors.Is(err, sql.ErrNoRows) {
			return core.NotFoundf("account %d not found", t.AccountID)
		}
		if err != nil {
			return fmt.Errorf("load account balance: %w", err)
		}

		err = tx.QueryRowContext(ctx, s.rebind(`
			INSERT INTO transactions (account_id, txn_date, txn_type, description, shop_name, amount_cents, payment_method, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`),
			t.AccountID, s.dateArg(t.Date), string(t.Type), t.Description, t.ShopName, t.Amount.Cents,
			t.PaymentMethod, string(t.Status), s.timeArg(t.CreatedAt),
		).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		if t.Expense != nil {
			category, err := s.getCategory(ctx, tx, t.Expense.CategoryID)
			if err != nil {
				return err
			}
			t.Expense.TransactionID = t.ID
			t.Expense.CategoryName = category.Name
			err = tx.QueryRowContext(ctx, s.rebind(`
				INSERT INTO expense_details (transaction_id, category_id, sub_category_name, sub_category_amount_cents)
				VALUES (?, ?, ?, ?)
				RETURNING id`),
				t.ID, t.Expense.CategoryID, t.Expense.SubCategoryName, t.Expense.SubCategoryAmount.Cents,
			).Scan(&t.Expense.ID)
			if err != nil {
				return fmt.Errorf("insert expense detail: %w", err)
			}
		}

		balance, err = t.ApplyTo(current)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.rebind(
			`UPDATE accounts SET balance_cents = ? WHERE id = ? AND owner_id = ?`),
			balance.Cents, t.AccountID, ownerID); err != nil {
			return fmt.Errorf("update account balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, core.Money{}, err
	}

	slog.InfoContext(ctx, "Transaction posted",
		"transaction_id", t.ID,
		"account_id", t.AccountID,
		"type", string(t.Type),
		"amount_cents", t.Amount.Cents,
		"balance_cents", balance.Cents)

	return t, balance, nil
}

// TransactionQuery selects a page of an owner's postings.
type TransactionQuery struct {
	OwnerID   int64
	AccountID int64 // zero means every account of the owner
	Filter    core.TransactionFilter
	Page      core.Pagination
}

const transactionFrom = `
	FROM transactions t
	JOIN accounts a ON a.id = t.account_id
	LEFT JOIN expense_details e ON e.transaction_id = t.id
	LEFT JOIN categories c ON c.id = e.category_id
	WHERE a.owner_id = ? AND a.deleted_at IS NULL AND t.deleted_at IS NULL`

// ListTransactions returns one page of postings, newest first, with the
// total number of matching postings.
func (s *Store) ListTransactions(ctx context.Context, q TransactionQuery) ([]core.TransactionEntry, int, error) {
	where := ""
	args := []any{q.OwnerID}
	if q.AccountID != 0 {
		where += ` AND t.account_id = ?`
		args = append(args, q.AccountID)
	}
	if q.Filter != "" && q.Filter != core.FilterAll {
		where += ` AND t.txn_type = ?`
		args = append(args, string(q.Filter))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*)`+transactionFrom+where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT t.id, t.account_id, a.bank_name, t.txn_date, t.txn_type, t.description, t.shop_name,
		       t.amount_cents, t.payment_method, t.status, t.created_at,
		       e.id, e.category_id, COALESCE(c.name, ''), e.sub_category_name, e.sub_category_amount_cents`+
		transactionFrom+where+`
		ORDER BY t.txn_date DESC, t.created_at DESC, t.id DESC
		LIMIT ? OFFSET ?`), append(args, q.Page.Limit, q.Page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	entries := []core.TransactionEntry{}
	for rows.Next() {
		t, bankName, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		entries = append(entries, core.NewTransactionEntry(t, bankName))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}
	return entries, total, nil
}

// GetTransaction returns a live posting owned (through its account) by ownerID.
func (s *Store) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT t.id, t.account_id, a.bank_name, t.txn_date, t.txn_type, t.description, t.shop_name,
		       t.amount_cents, t.payment_method, t.status, t.created_at,
		       e.id, e.category_id, COALESCE(c.name, ''), e.sub_category_name, e.sub_category_amount_cents`+
		transactionFrom+` AND t.id = ?`), ownerID, id)
	t, _, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NotFoundf("transaction %d not found", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, string, error) {
	var (
		t                core.Transaction
		bankName         string
		txnDate, created dbTime
		detailID, catID  sql.NullInt64
		categoryName     string
		subName          sql.NullString
		subAmount        sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.AccountID, &bankName, &txnDate, &t.Type, &t.Description, &t.ShopName,
		&t.Amount.Cents, &t.PaymentMethod, &t.Status, &created,
		&detailID, &catID, &categoryName, &subName, &subAmount)
	if err != nil {
		return core.Transaction{}, "", err
	}
	t.Date = txnDate.date()
	t.CreatedAt = created.Time.UTC()
	if detailID.Valid {
		t.Expense = &core.ExpenseDetail{
			ID:                detailID.Int64,
			TransactionID:     t.ID,
			CategoryID:        catID.Int64,
			CategoryName:      categoryName,
			SubCategoryName:   subName.String,
			SubCategoryAmount: core.Money{Cents: subAmount.Int64},
		}
	}
	return t, bankName, nil
}
