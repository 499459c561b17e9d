package storage

import (
	"context"
	"fmt"

	"finledger/internal/core"
)

// MonthlyExpenseTotals sums expense postings by month number (1-12) across
// every year in the ledger.
func (s *Store) MonthlyExpenseTotals(ctx context.Context, ownerID int64) (map[int]int64, error) {
	month := s.monthOf("t.txn_date")
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+month+` AS m, CAST(COALESCE(SUM(t.amount_cents), 0) AS BIGINT)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.owner_id = ? AND a.deleted_at IS NULL AND t.deleted_at IS NULL AND t.txn_type = ?
		GROUP BY `+month), ownerID, string(core.TransactionExpense))
	if err != nil {
		return nil, fmt.Errorf("sum expenses by month: %w", err)
	}
	defer rows.Close()

	totals := make(map[int]int64)
	for rows.Next() {
		var m int
		var cents int64
		if err := rows.Scan(&m, &cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals[m] = cents
	}
	return totals, rows.Err()
}

// MonthlyTotalsByType sums revenue and expense postings per month of year.
func (s *Store) MonthlyTotalsByType(ctx context.Context, ownerID int64, year int) (revenue, expense map[int]int64, err error) {
	from := core.NewDate(year, 1, 1)
	to := core.NewDate(year+1, 1, 1)
	month := s.monthOf("t.txn_date")

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+month+` AS m, t.txn_type, CAST(COALESCE(SUM(t.amount_cents), 0) AS BIGINT)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.owner_id = ? AND a.deleted_at IS NULL AND t.deleted_at IS NULL
		  AND t.txn_date >= ? AND t.txn_date < ?
		GROUP BY `+month+`, t.txn_type`), ownerID, s.dateArg(from), s.dateArg(to))
	if err != nil {
		return nil, nil, fmt.Errorf("sum transactions by month: %w", err)
	}
	defer rows.Close()

	revenue = make(map[int]int64)
	expense = make(map[int]int64)
	for rows.Next() {
		var (
			m     int
			typ   core.TransactionType
			cents int64
		)
		if err := rows.Scan(&m, &typ, &cents); err != nil {
			return nil, nil, fmt.Errorf("scan monthly total: %w", err)
		}
		switch typ {
		case core.TransactionRevenue:
			revenue[m] = cents
		case core.TransactionExpense:
			expense[m] = cents
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate monthly totals: %w", err)
	}
	return revenue, expense, nil
}

// ExpenseLines loads the owner's expense details dated within [from, to).
func (s *Store) ExpenseLines(ctx context.Context, ownerID int64, from, to core.Date) ([]core.ExpenseLine, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT t.id, t.txn_date, e.category_id, c.name, e.sub_category_name, e.sub_category_amount_cents
		FROM expense_details e
		JOIN transactions t ON t.id = e.transaction_id
		JOIN accounts a ON a.id = t.account_id
		JOIN categories c ON c.id = e.category_id
		WHERE a.owner_id = ? AND a.deleted_at IS NULL AND t.deleted_at IS NULL
		  AND t.txn_type = ? AND t.txn_date >= ? AND t.txn_date < ?
		ORDER BY t.txn_date DESC, t.id DESC`),
		ownerID, string(core.TransactionExpense), s.dateArg(from), s.dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("load expense lines: %w", err)
	}
	defer rows.Close()

	var lines []core.ExpenseLine
	for rows.Next() {
		var (
			line    core.ExpenseLine
			txnDate dbTime
		)
		if err := rows.Scan(&line.TransactionID, &txnDate, &line.CategoryID, &line.CategoryName,
			&line.SubCategoryName, &line.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan expense line: %w", err)
		}
		line.Date = txnDate.date()
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
