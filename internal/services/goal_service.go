package services

import (
	"context"
	"time"

	"finledger/internal/core"
	"finledger/internal/log"
)

type GoalStore interface {
	MonthlyTotalsStore
	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	GetGoal(ctx context.Context, ownerID, id int64) (core.Goal, error)
	ListGoals(ctx context.Context, ownerID int64) ([]core.Goal, error)
	UpdateGoalProgress(ctx context.Context, ownerID, id int64, p core.GoalProgress, at time.Time) error
	GetCategory(ctx context.Context, id int64) (core.Category, error)
}

type GoalService struct {
	store GoalStore
	now   func() time.Time
}

func NewGoalService(store GoalStore) *GoalService {
	return &GoalService{store: store, now: time.Now}
}

func (s *GoalService) Create(ctx context.Context, ownerID int64, in core.GoalInput) (core.Goal, error) {
	if err := in.Validate(); err != nil {
		return core.Goal{}, err
	}
	if in.CategoryID != nil {
		if _, err := s.store.GetCategory(ctx, *in.CategoryID); err != nil {
			return core.Goal{}, err
		}
	}

	g, err := s.store.CreateGoal(ctx, in.Goal(ownerID, s.now()))
	if err != nil {
		return core.Goal{}, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentGoal).InfoContext(ctx, "Goal created",
		log.FieldOwnerID, ownerID,
		log.FieldGoalID, g.ID,
		"goal_type", string(g.Type))
	return g, nil
}

// Update replaces the goal's target and progress and stamps LastUpdated.
// Invalid progress leaves the stored goal untouched.
func (s *GoalService) Update(ctx context.Context, ownerID, goalID int64, p core.GoalProgress) (core.Goal, error) {
	if _, err := s.store.GetGoal(ctx, ownerID, goalID); err != nil {
		return core.Goal{}, err
	}
	if err := p.Validate(); err != nil {
		return core.Goal{}, err
	}

	if err := s.store.UpdateGoalProgress(ctx, ownerID, goalID, p, s.now().UTC()); err != nil {
		return core.Goal{}, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentGoal).InfoContext(ctx, "Goal updated",
		log.FieldOwnerID, ownerID,
		log.FieldGoalID, goalID,
		log.FieldAmountCents, p.ArchivedAmount.Cents)
	return s.store.GetGoal(ctx, ownerID, goalID)
}

// UserGoals partitions the owner's goals, optionally keeping only those
// active in month ("YYYY-MM").
func (s *GoalService) UserGoals(ctx context.Context, ownerID int64, month string) (core.UserGoals, error) {
	var filter *core.YearMonth
	if month != "" {
		ym, err := core.ParseYearMonth(month)
		if err != nil {
			return core.UserGoals{}, err
		}
		filter = &ym
	}

	goals, err := s.store.ListGoals(ctx, ownerID)
	if err != nil {
		return core.UserGoals{}, err
	}
	return core.PartitionGoals(goals, filter), nil
}

// SavingsSummary reports monthly net savings floored at zero.
func (s *GoalService) SavingsSummary(ctx context.Context, ownerID int64, year int) (core.SavingsSummary, error) {
	return loadSavings(ctx, s.store, ownerID, year, true)
}
