package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finledger/internal/core"
)

const goalSelect = `
	SELECT g.id, g.owner_id, g.goal_type, g.category_id, COALESCE(c.name, ''), g.start_date, g.end_date,
	       g.target_amount_cents, g.target_achieved_cents, g.present_amount_cents, g.last_updated
	FROM goals g
	LEFT JOIN categories c ON c.id = g.category_id`

func scanGoal(row interface{ Scan(...any) error }) (core.Goal, error) {
	var (
		g                  core.Goal
		categoryID         sql.NullInt64
		start, end, update dbTime
		present            sql.NullInt64
	)
	err := row.Scan(&g.ID, &g.OwnerID, &g.Type, &categoryID, &g.CategoryName, &start, &end,
		&g.TargetAmount.Cents, &g.TargetAchieved.Cents, &present, &update)
	if err != nil {
		return core.Goal{}, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		g.CategoryID = &id
	}
	if present.Valid {
		g.PresentAmount = &core.Money{Cents: present.Int64}
	}
	g.StartDate = start.date()
	g.EndDate = end.date()
	g.LastUpdated = update.Time.UTC()
	return g, nil
}

func nullableCents(m *core.Money) any {
	if m == nil {
		return nil
	}
	return m.Cents
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// CreateGoal inserts g and returns it with its id.
func (s *Store) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO goals (owner_id, goal_type, category_id, start_date, end_date,
		                   target_amount_cents, target_achieved_cents, present_amount_cents, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		g.OwnerID, string(g.Type), nullableID(g.CategoryID), s.dateArg(g.StartDate), s.dateArg(g.EndDate),
		g.TargetAmount.Cents, g.TargetAchieved.Cents, nullableCents(g.PresentAmount), s.timeArg(g.LastUpdated),
	).Scan(&g.ID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved", "goal_id", g.ID, "owner_id", g.OwnerID, "type", string(g.Type))
	return g, nil
}

// GetGoal returns a goal owned by ownerID.
func (s *Store) GetGoal(ctx context.Context, ownerID, id int64) (core.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, s.rebind(goalSelect+` WHERE g.id = ? AND g.owner_id = ?`), id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.NotFoundf("goal %d not found", id)
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// ListGoals returns every goal of the owner ordered by start date.
func (s *Store) ListGoals(ctx context.Context, ownerID int64) ([]core.Goal, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(goalSelect+` WHERE g.owner_id = ? ORDER BY g.start_date, g.id`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []core.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoalProgress stores a new target and achieved amount.
func (s *Store) UpdateGoalProgress(ctx context.Context, ownerID, id int64, p core.GoalProgress, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE goals SET target_amount_cents = ?, target_achieved_cents = ?, last_updated = ?
		WHERE id = ? AND owner_id = ?`),
		p.TargetAmount.Cents, p.ArchivedAmount.Cents, s.timeArg(at), id, ownerID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFoundf("goal %d not found", id)
	}
	return nil
}
