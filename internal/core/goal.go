package core

import "time"

type GoalType string

const (
	GoalSaving       GoalType = "Saving"
	GoalExpenseLimit GoalType = "Expense_Limit"
)

func (t GoalType) IsValid() bool {
	return t == GoalSaving || t == GoalExpenseLimit
}

// Goal is either a savings target or a spending cap on one category.
type Goal struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"-"`
	Type           GoalType  `json:"goal_type"`
	CategoryID     *int64    `json:"category_id"`
	CategoryName   string    `json:"category_name,omitempty"`
	StartDate      Date      `json:"start_date"`
	EndDate        Date      `json:"end_date"`
	TargetAmount   Money     `json:"target_amount"`
	TargetAchieved Money     `json:"target_achieved"`
	PresentAmount  *Money    `json:"present_amount"`
	LastUpdated    time.Time `json:"last_updated"`
}

// ActiveIn reports whether month falls within the goal's start and end
// months. The comparison is month-granular.
func (g Goal) ActiveIn(month YearMonth) bool {
	key := month.Key()
	return g.StartDate.YearMonth().Key() <= key && key <= g.EndDate.YearMonth().Key()
}

// GoalInput is the payload for creating a goal.
type GoalInput struct {
	Type           GoalType `json:"goal_type"`
	CategoryID     *int64   `json:"category_id"`
	StartDate      Date     `json:"start_date"`
	EndDate        Date     `json:"end_date"`
	TargetAmount   Money    `json:"target_amount"`
	TargetAchieved *Money   `json:"target_achieved"`
	PresentAmount  *Money   `json:"present_amount"`
}

// Validate checks everything except category existence, which needs storage.
func (in GoalInput) Validate() error {
	if !in.Type.IsValid() {
		return Validationf("invalid goal type %q: must be Saving or Expense_Limit", in.Type)
	}
	switch in.Type {
	case GoalSaving:
		if in.CategoryID != nil {
			return Validationf("saving goals cannot have a category")
		}
	case GoalExpenseLimit:
		if in.CategoryID == nil {
			return Validationf("expense limit goals require a category")
		}
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Validationf("start date and end date are required")
	}
	if !in.StartDate.Before(in.EndDate.Time) {
		return Validationf("start date must be before end date")
	}
	if !in.TargetAmount.IsPositive() {
		return Validationf("target amount must be greater than zero")
	}
	if in.TargetAchieved != nil {
		if in.TargetAchieved.IsNegative() {
			return Validationf("target achieved cannot be negative")
		}
		if in.TargetAchieved.Cents > in.TargetAmount.Cents {
			return Validationf("target achieved cannot exceed target amount")
		}
	}
	return nil
}

func (in GoalInput) Goal(ownerID int64, now time.Time) Goal {
	g := Goal{
		OwnerID:       ownerID,
		Type:          in.Type,
		CategoryID:    in.CategoryID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		TargetAmount:  in.TargetAmount,
		PresentAmount: in.PresentAmount,
		LastUpdated:   now.UTC(),
	}
	if in.TargetAchieved != nil {
		g.TargetAchieved = *in.TargetAchieved
	}
	return g
}

// GoalProgress is the payload for updating a goal's target and progress.
type GoalProgress struct {
	TargetAmount   Money `json:"target_amount"`
	ArchivedAmount Money `json:"archived_amount"`
}

func (p GoalProgress) Validate() error {
	if !p.TargetAmount.IsPositive() {
		return Validationf("target amount must be greater than zero")
	}
	if p.ArchivedAmount.IsNegative() {
		return Validationf("archived amount cannot be negative")
	}
	if p.ArchivedAmount.Cents > p.TargetAmount.Cents {
		return Validationf("archived amount cannot exceed target amount")
	}
	return nil
}

// UserGoals splits a user's goals into the saving goal and expense limits.
type UserGoals struct {
	Saving   *Goal  `json:"saving"`
	Expenses []Goal `json:"expenses"`
}

// PartitionGoals keeps the first saving goal without a category and every
// expense-limit goal. With a month, only goals active in it are kept.
func PartitionGoals(goals []Goal, month *YearMonth) UserGoals {
	out := UserGoals{Expenses: []Goal{}}
	for i := range goals {
		g := goals[i]
		if month != nil && !g.ActiveIn(*month) {
			continue
		}
		switch g.Type {
		case GoalSaving:
			if out.Saving == nil && g.CategoryID == nil {
				out.Saving = &g
			}
		case GoalExpenseLimit:
			out.Expenses = append(out.Expenses, g)
		}
	}
	return out
}
