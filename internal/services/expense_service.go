package services

import (
	"context"
	"time"

	"finledger/internal/core"
)

type ExpenseStore interface {
	MonthlyExpenseTotals(ctx context.Context, ownerID int64) (map[int]int64, error)
	ExpenseLines(ctx context.Context, ownerID int64, from, to core.Date) ([]core.ExpenseLine, error)
}

// ExpenseService aggregates expense postings for dashboards.
type ExpenseService struct {
	store ExpenseStore
	now   func() time.Time
}

func NewExpenseService(store ExpenseStore) *ExpenseService {
	return &ExpenseService{store: store, now: time.Now}
}

// MonthlySummary totals expenses by month number, folding every year in
// the ledger onto January..December.
func (s *ExpenseService) MonthlySummary(ctx context.Context, ownerID int64) (core.MonthlySeries, error) {
	totals, err := s.store.MonthlyExpenseTotals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return core.NewMonthlySeries(totals), nil
}

// Breakdown compares each category's spending in month ("YYYY-MM", empty
// for the current month) with the month before. A month without expense
// activity is reported as not found.
func (s *ExpenseService) Breakdown(ctx context.Context, ownerID int64, month string) (core.ExpenseBreakdown, error) {
	target := core.CurrentYearMonth(s.now())
	if month != "" {
		ym, err := core.ParseYearMonth(month)
		if err != nil {
			return core.ExpenseBreakdown{}, err
		}
		target = ym
	}
	previous := target.Previous()

	from, to := target.Range()
	current, err := s.store.ExpenseLines(ctx, ownerID, from, to)
	if err != nil {
		return core.ExpenseBreakdown{}, err
	}
	if len(current) == 0 {
		return core.ExpenseBreakdown{}, core.NotFoundf("no expenses recorded in %s", target)
	}

	from, to = previous.Range()
	prior, err := s.store.ExpenseLines(ctx, ownerID, from, to)
	if err != nil {
		return core.ExpenseBreakdown{}, err
	}

	categories := core.BuildBreakdown(current, prior)
	if len(categories) == 0 {
		return core.ExpenseBreakdown{}, core.NotFoundf("no expenses recorded in %s", target)
	}
	return core.ExpenseBreakdown{
		Month:         target.String(),
		PreviousMonth: previous.String(),
		Categories:    categories,
	}, nil
}
