package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"finledger/internal/core"
)

// MonthlyTotalsStore sums postings per month of a year.
type MonthlyTotalsStore interface {
	MonthlyTotalsByType(ctx context.Context, ownerID int64, year int) (revenue, expense map[int]int64, err error)
}

// loadSavings computes revenue minus expense for every month of year and of
// the year before, loading both years concurrently.
func loadSavings(ctx context.Context, store MonthlyTotalsStore, ownerID int64, year int, floor bool) (core.SavingsSummary, error) {
	if err := core.ValidateSummaryYear(year); err != nil {
		return core.SavingsSummary{}, err
	}

	var thisYear, lastYear core.MonthlySeries
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rev, exp, err := store.MonthlyTotalsByType(gctx, ownerID, year)
		if err != nil {
			return err
		}
		thisYear = core.NetSeries(rev, exp, floor)
		return nil
	})
	g.Go(func() error {
		rev, exp, err := store.MonthlyTotalsByType(gctx, ownerID, year-1)
		if err != nil {
			return err
		}
		lastYear = core.NetSeries(rev, exp, floor)
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.SavingsSummary{}, err
	}

	return core.SavingsSummary{Year: year, ThisYear: thisYear, LastYear: lastYear}, nil
}

type SavingsStore interface {
	MonthlyTotalsStore
	CountAccounts(ctx context.Context, ownerID int64) (int, error)
}

// SavingsService reports signed monthly net savings. Unlike
// GoalService.SavingsSummary, negative months stay negative.
type SavingsService struct {
	store SavingsStore
}

func NewSavingsService(store SavingsStore) *SavingsService {
	return &SavingsService{store: store}
}

func (s *SavingsService) Summary(ctx context.Context, ownerID int64, year int) (core.SavingsSummary, error) {
	if err := core.ValidateSummaryYear(year); err != nil {
		return core.SavingsSummary{}, err
	}

	n, err := s.store.CountAccounts(ctx, ownerID)
	if err != nil {
		return core.SavingsSummary{}, err
	}
	if n == 0 {
		return core.EmptySavingsSummary(year), nil
	}
	return loadSavings(ctx, s.store, ownerID, year, false)
}
