package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finledger/internal/core"
)

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory fails with a validation error when the category does not
// exist, since callers only reach it through a referencing payload.
func (s *Store) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.getCategory(ctx, s.db, id)
}

func (s *Store) getCategory(ctx context.Context, q querier, id int64) (core.Category, error) {
	var c core.Category
	err := q.QueryRowContext(ctx, s.rebind(`SELECT id, name FROM categories WHERE id = ?`), id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.Validationf("category %d does not exist", id)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListBills returns the owner's bills by due date.
func (s *Store) ListBills(ctx context.Context, ownerID int64) ([]core.Bill, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, owner_id, due_date, logo_url, description, last_charge_date, amount_cents
		FROM bills WHERE owner_id = ?
		ORDER BY due_date, id`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	bills := []core.Bill{}
	for rows.Next() {
		var (
			b                   core.Bill
			dueDate, lastCharge dbTime
		)
		if err := rows.Scan(&b.ID, &b.OwnerID, &dueDate, &b.LogoURL, &b.Description, &lastCharge, &b.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b.DueDate = dueDate.date()
		b.LastChargeDate = lastCharge.date()
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// CreateBill stores a bill. The API never creates bills; see cmd/finledger -import-bills.
func (s *Store) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	var lastCharge any
	if !b.LastChargeDate.IsZero() {
		lastCharge = s.dateArg(b.LastChargeDate)
	}
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO bills (owner_id, due_date, logo_url, description, last_charge_date, amount_cents)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		b.OwnerID, s.dateArg(b.DueDate), b.LogoURL, b.Description, lastCharge, b.Amount.Cents,
	).Scan(&b.ID)
	if err != nil {
		return core.Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	return b, nil
}
