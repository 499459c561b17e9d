package services

import (
	"context"
	"testing"
	"time"

	"finledger/internal/core"
)

func goalInput(typ core.GoalType, category *int64, start, end core.Date, targetCents int64) core.GoalInput {
	return core.GoalInput{
		Type:         typ,
		CategoryID:   category,
		StartDate:    start,
		EndDate:      end,
		TargetAmount: core.NewMoney(targetCents),
	}
}

func TestGoalService_Create(t *testing.T) {
	svc := NewGoalService(newStore(t))
	ctx := context.Background()
	food := categoryFood
	unknown := int64(999)
	jan, dec := core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31)

	tests := []struct {
		name    string
		input   core.GoalInput
		wantErr error
	}{
		{name: "saving goal", input: goalInput(core.GoalSaving, nil, jan, dec, 500000)},
		{name: "expense limit", input: goalInput(core.GoalExpenseLimit, &food, jan, dec, 20000)},
		{name: "saving with category", input: goalInput(core.GoalSaving, &food, jan, dec, 500000), wantErr: core.ErrValidation},
		{name: "expense limit without category", input: goalInput(core.GoalExpenseLimit, nil, jan, dec, 20000), wantErr: core.ErrValidation},
		{name: "unknown category", input: goalInput(core.GoalExpenseLimit, &unknown, jan, dec, 20000), wantErr: core.ErrValidation},
		{name: "start equals end", input: goalInput(core.GoalSaving, nil, jan, jan, 500000), wantErr: core.ErrValidation},
		{name: "zero target", input: goalInput(core.GoalSaving, nil, jan, dec, 0), wantErr: core.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := svc.Create(ctx, owner, tt.input)
			if tt.wantErr != nil {
				wantKind(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if g.ID == 0 || g.LastUpdated.IsZero() {
				t.Errorf("Create() = %+v, want id and last updated", g)
			}
		})
	}
}

func TestGoalService_Update(t *testing.T) {
	svc := NewGoalService(newStore(t))
	stamp := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamp }
	ctx := context.Background()

	g, err := svc.Create(ctx, owner, goalInput(core.GoalSaving, nil, core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31), 100000))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("archived above target leaves goal unchanged", func(t *testing.T) {
		_, err := svc.Update(ctx, owner, g.ID, core.GoalProgress{TargetAmount: core.NewMoney(100), ArchivedAmount: core.NewMoney(101)})
		wantKind(t, err, core.ErrValidation)

		goals, err := svc.UserGoals(ctx, owner, "")
		if err != nil {
			t.Fatalf("UserGoals() error = %v", err)
		}
		if goals.Saving == nil || goals.Saving.TargetAmount.Cents != 100000 || goals.Saving.TargetAchieved.Cents != 0 {
			t.Errorf("stored goal changed: %+v", goals.Saving)
		}
	})

	t.Run("negative archived", func(t *testing.T) {
		_, err := svc.Update(ctx, owner, g.ID, core.GoalProgress{TargetAmount: core.NewMoney(100), ArchivedAmount: core.NewMoney(-1)})
		wantKind(t, err, core.ErrValidation)
	})

	t.Run("other owner", func(t *testing.T) {
		_, err := svc.Update(ctx, otherOwner, g.ID, core.GoalProgress{TargetAmount: core.NewMoney(100), ArchivedAmount: core.NewMoney(1)})
		wantKind(t, err, core.ErrNotFound)
	})

	t.Run("valid progress", func(t *testing.T) {
		got, err := svc.Update(ctx, owner, g.ID, core.GoalProgress{TargetAmount: core.NewMoney(200000), ArchivedAmount: core.NewMoney(50000)})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.TargetAmount.Cents != 200000 || got.TargetAchieved.Cents != 50000 {
			t.Errorf("Update() = %+v", got)
		}
		if !got.LastUpdated.Equal(stamp) {
			t.Errorf("LastUpdated = %v, want %v", got.LastUpdated, stamp)
		}
	})
}

func TestGoalService_UserGoals(t *testing.T) {
	svc := NewGoalService(newStore(t))
	ctx := context.Background()
	food, housing := categoryFood, categoryHousing

	inputs := []core.GoalInput{
		goalInput(core.GoalSaving, nil, core.NewDate(2024, 1, 15), core.NewDate(2024, 3, 1), 1000),
		goalInput(core.GoalSaving, nil, core.NewDate(2024, 5, 1), core.NewDate(2024, 8, 1), 2000),
		goalInput(core.GoalExpenseLimit, &food, core.NewDate(2024, 2, 20), core.NewDate(2024, 2, 21), 300),
		goalInput(core.GoalExpenseLimit, &housing, core.NewDate(2024, 6, 1), core.NewDate(2024, 9, 1), 400),
	}
	for _, in := range inputs {
		if _, err := svc.Create(ctx, owner, in); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name         string
		month        string
		wantSaving   int64
		wantExpenses int
	}{
		{name: "all goals", month: "", wantSaving: 1000, wantExpenses: 2},
		{name: "month granular start", month: "2024-01", wantSaving: 1000, wantExpenses: 0},
		{name: "short limit spans its month", month: "2024-02", wantSaving: 1000, wantExpenses: 1},
		{name: "later saving goal", month: "2024-07", wantSaving: 2000, wantExpenses: 1},
		{name: "nothing active", month: "2024-12", wantSaving: 0, wantExpenses: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.UserGoals(ctx, owner, tt.month)
			if err != nil {
				t.Fatalf("UserGoals() error = %v", err)
			}
			var saving int64
			if got.Saving != nil {
				saving = got.Saving.TargetAmount.Cents
			}
			if saving != tt.wantSaving || len(got.Expenses) != tt.wantExpenses {
				t.Errorf("UserGoals(%q) saving %d, %d expenses; want %d, %d", tt.month, saving, len(got.Expenses), tt.wantSaving, tt.wantExpenses)
			}
		})
	}

	_, err := svc.UserGoals(ctx, owner, "2024-00")
	wantKind(t, err, core.ErrValidation)
}

func TestSavingsSummaries(t *testing.T) {
	store := newStore(t)
	accounts := NewAccountService(store, nil)
	txns := NewTransactionService(store, nil)
	goals := NewGoalService(store)
	savings := NewSavingsService(store)
	ctx := context.Background()

	a := openAccount(t, accounts, owner, 100000)
	mustPost(t, txns, owner, revenueInput(a.ID, 5000, core.NewDate(2025, 1, 10)))
	mustPost(t, txns, owner, expenseInput(a.ID, 2000, core.NewDate(2025, 1, 12), categoryFood, ""))
	mustPost(t, txns, owner, expenseInput(a.ID, 3000, core.NewDate(2025, 2, 12), categoryFood, ""))
	mustPost(t, txns, owner, revenueInput(a.ID, 700, core.NewDate(2024, 12, 31)))

	floored, err := goals.SavingsSummary(ctx, owner, 2025)
	if err != nil {
		t.Fatalf("GoalService.SavingsSummary() error = %v", err)
	}
	signed, err := savings.Summary(ctx, owner, 2025)
	if err != nil {
		t.Fatalf("SavingsService.Summary() error = %v", err)
	}

	for _, s := range []core.SavingsSummary{floored, signed} {
		if len(s.ThisYear) != 12 || len(s.LastYear) != 12 {
			t.Fatalf("series lengths %d/%d", len(s.ThisYear), len(s.LastYear))
		}
		if s.ThisYear[0].Total.Cents != 3000 {
			t.Errorf("Jan = %d, want 3000", s.ThisYear[0].Total.Cents)
		}
		if s.LastYear[11].Total.Cents != 700 {
			t.Errorf("last Dec = %d, want 700", s.LastYear[11].Total.Cents)
		}
	}
	if floored.ThisYear[1].Total.Cents != 0 {
		t.Errorf("floored Feb = %d, want 0", floored.ThisYear[1].Total.Cents)
	}
	if signed.ThisYear[1].Total.Cents != -3000 {
		t.Errorf("signed Feb = %d, want -3000", signed.ThisYear[1].Total.Cents)
	}

	for _, year := range []int{1999, 2101} {
		_, err := goals.SavingsSummary(ctx, owner, year)
		wantKind(t, err, core.ErrValidation)
		_, err = savings.Summary(ctx, owner, year)
		wantKind(t, err, core.ErrValidation)
	}
}
