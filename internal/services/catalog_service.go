package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"finledger/internal/core"
	"finledger/internal/log"
)

type CatalogStore interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListBills(ctx context.Context, ownerID int64) ([]core.Bill, error)
	CreateBill(ctx context.Context, b core.Bill) (core.Bill, error)
}

// CatalogService serves reference data: categories and bills.
type CatalogService struct {
	store CatalogStore
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// ListBills returns the owner's bills by due date.
func (s *CatalogService) ListBills(ctx context.Context, ownerID int64) ([]core.Bill, error) {
	return s.store.ListBills(ctx, ownerID)
}

// ImportBills reads a JSON array of bills and stores them for ownerID.
// Every bill is validated before the first one is written.
func (s *CatalogService) ImportBills(ctx context.Context, ownerID int64, r io.Reader) (int, error) {
	var inputs []core.BillInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return 0, core.Validationf("invalid bills file: %v", err)
	}
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return 0, fmt.Errorf("bill %d: %w", i+1, err)
		}
	}

	for i, in := range inputs {
		if _, err := s.store.CreateBill(ctx, in.Bill(ownerID)); err != nil {
			return i, fmt.Errorf("import bill %d: %w", i+1, err)
		}
	}

	log.FromContext(ctx).WithComponent(log.ComponentBackend).InfoContext(ctx, "Bills imported",
		log.FieldOwnerID, ownerID,
		"count", len(inputs))
	return len(inputs), nil
}
