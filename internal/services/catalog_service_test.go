package services

import (
	"context"
	"strings"
	"testing"

	"finledger/internal/core"
)

func TestCatalogService_ListCategories(t *testing.T) {
	svc := NewCatalogService(newStore(t))

	categories, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 11 {
		t.Fatalf("got %d categories, want the 11 seeded", len(categories))
	}
	for i := 1; i < len(categories); i++ {
		if categories[i-1].Name > categories[i].Name {
			t.Errorf("categories not sorted by name: %q before %q", categories[i-1].Name, categories[i].Name)
		}
	}
}

func TestCatalogService_ImportBills(t *testing.T) {
	ctx := context.Background()

	t.Run("imports and lists by due date", func(t *testing.T) {
		svc := NewCatalogService(newStore(t))
		file := `[
			{"description": "Rent", "due_date": "2024-07-01", "amount": 950, "last_charge_date": "2024-06-01"},
			{"description": "Streaming", "due_date": "2024-06-15T00:00:00Z", "amount": "12.99", "logo_url": "https://example.com/s.png"}
		]`
		n, err := svc.ImportBills(ctx, owner, strings.NewReader(file))
		if err != nil {
			t.Fatalf("ImportBills() error = %v", err)
		}
		if n != 2 {
			t.Errorf("ImportBills() = %d, want 2", n)
		}

		bills, err := svc.ListBills(ctx, owner)
		if err != nil {
			t.Fatalf("ListBills() error = %v", err)
		}
		if len(bills) != 2 || bills[0].Description != "Streaming" || bills[0].Amount.Cents != 1299 {
			t.Fatalf("ListBills() = %+v", bills)
		}
		if bills[1].LastChargeDate.String() != "2024-06-01" {
			t.Errorf("LastChargeDate = %s", bills[1].LastChargeDate)
		}

		other, err := svc.ListBills(ctx, otherOwner)
		if err != nil || len(other) != 0 {
			t.Errorf("other owner bills = %v, %v", other, err)
		}
	})

	t.Run("rejects whole file on invalid bill", func(t *testing.T) {
		svc := NewCatalogService(newStore(t))
		file := `[{"description": "Rent", "due_date": "2024-07-01", "amount": 950}, {"description": "", "due_date": "2024-07-01", "amount": 1}]`
		_, err := svc.ImportBills(ctx, owner, strings.NewReader(file))
		wantKind(t, err, core.ErrValidation)

		bills, _ := svc.ListBills(ctx, owner)
		if len(bills) != 0 {
			t.Errorf("partial import stored %d bills", len(bills))
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		svc := NewCatalogService(newStore(t))
		_, err := svc.ImportBills(ctx, owner, strings.NewReader(`{"not": "a list"}`))
		wantKind(t, err, core.ErrValidation)
	})
}
