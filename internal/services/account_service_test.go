package services

import (
	"context"
	"testing"

	"finledger/internal/amqp"
	"finledger/internal/core"
)

func TestAccountService_Create(t *testing.T) {
	svc := NewAccountService(newStore(t), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   core.AccountInput
		wantErr error
	}{
		{
			name: "valid account",
			input: core.AccountInput{
				BankName:       "  Acme Bank ",
				Type:           core.AccountSavings,
				AccountNumber:  "1234567890",
				InitialBalance: core.NewMoney(10000),
			},
		},
		{
			name: "negative initial balance",
			input: core.AccountInput{
				BankName:       "Acme Bank",
				Type:           core.AccountSavings,
				AccountNumber:  "1234567890",
				InitialBalance: core.NewMoney(-1),
			},
			wantErr: core.ErrValidation,
		},
		{
			name: "unknown type",
			input: core.AccountInput{
				BankName:      "Acme Bank",
				Type:          "Piggy",
				AccountNumber: "1234567890",
			},
			wantErr: core.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Create(ctx, owner, tt.input)
			if tt.wantErr != nil {
				wantKind(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if got.BankName != "Acme Bank" {
				t.Errorf("BankName = %q, want trimmed", got.BankName)
			}
			if got.Last4 != "7890" {
				t.Errorf("Last4 = %q, want 7890", got.Last4)
			}
			if got.MaskedNumber != "123456****" {
				t.Errorf("MaskedNumber = %q, want 123456****", got.MaskedNumber)
			}
		})
	}
}

func TestAccountService_Detail(t *testing.T) {
	store := newStore(t)
	accounts := NewAccountService(store, nil)
	txns := NewTransactionService(store, nil)
	ctx := context.Background()

	a := openAccount(t, accounts, owner, 100000)
	for day := 1; day <= 7; day++ {
		mustPost(t, txns, owner, expenseInput(a.ID, 100, core.NewDate(2024, 3, day), categoryFood, "lunch"))
	}
	mustPost(t, txns, owner, revenueInput(a.ID, 5000, core.NewDate(2024, 3, 8)))

	t.Run("default page", func(t *testing.T) {
		d, err := accounts.Detail(ctx, owner, a.ID, 0, 0)
		if err != nil {
			t.Fatalf("Detail() error = %v", err)
		}
		page := d.Transactions
		if len(page.Items) != DefaultDetailPageSize || page.Total != 8 || !page.HasMore {
			t.Fatalf("page = %d items, total %d, hasMore %v", len(page.Items), page.Total, page.HasMore)
		}
		if first := page.Items[0]; first.Type != core.TransactionRevenue || first.Amount.Cents != 5000 {
			t.Errorf("first entry = %+v, want newest revenue with positive amount", first)
		}
		if second := page.Items[1]; second.Amount.Cents != -100 {
			t.Errorf("expense amount = %d, want -100", second.Amount.Cents)
		}
		if d.Balance.Cents != 100000-700+5000 {
			t.Errorf("Balance = %d", d.Balance.Cents)
		}
	})

	t.Run("last page", func(t *testing.T) {
		d, err := accounts.Detail(ctx, owner, a.ID, 5, 5)
		if err != nil {
			t.Fatalf("Detail() error = %v", err)
		}
		if len(d.Transactions.Items) != 3 || d.Transactions.HasMore {
			t.Errorf("last page = %d items, hasMore %v", len(d.Transactions.Items), d.Transactions.HasMore)
		}
	})

	t.Run("other owner", func(t *testing.T) {
		_, err := accounts.Detail(ctx, otherOwner, a.ID, 0, 0)
		wantKind(t, err, core.ErrNotFound)
	})

	t.Run("limit too large", func(t *testing.T) {
		_, err := accounts.Detail(ctx, owner, a.ID, core.MaxPageSize+1, 0)
		wantKind(t, err, core.ErrValidation)
	})
}

func TestAccountService_Update(t *testing.T) {
	svc := NewAccountService(newStore(t), nil)
	ctx := context.Background()
	a := openAccount(t, svc, owner, 0)

	number := "99998888"
	branch := "Downtown"
	got, err := svc.Update(ctx, owner, a.ID, core.AccountPatch{AccountNumber: &number, BranchName: &branch})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Last4 != "8888" || got.MaskedNumber != "9999****" {
		t.Errorf("number not re-derived: last4 %q masked %q", got.Last4, got.MaskedNumber)
	}
	if got.BankName != "Test Bank" || got.BranchName != "Downtown" {
		t.Errorf("unexpected merge result %+v", got)
	}

	if _, err := svc.Update(ctx, otherOwner, a.ID, core.AccountPatch{BranchName: &branch}); err == nil {
		t.Fatal("Update() by another owner should fail")
	} else {
		wantKind(t, err, core.ErrNotFound)
	}

	empty := " "
	_, err = svc.Update(ctx, owner, a.ID, core.AccountPatch{BankName: &empty})
	wantKind(t, err, core.ErrValidation)
}

func TestAccountService_Delete(t *testing.T) {
	store := newStore(t)
	pub := &recordingPublisher{}
	accounts := NewAccountService(store, pub)
	txns := NewTransactionService(store, nil)
	ctx := context.Background()

	a := openAccount(t, accounts, owner, 10000)
	for i := 0; i < 3; i++ {
		mustPost(t, txns, owner, expenseInput(a.ID, 100, core.NewDate(2024, 1, 10+i), categoryFood, ""))
	}

	if _, err := accounts.Delete(ctx, otherOwner, a.ID); err == nil {
		t.Fatal("Delete() by another owner should fail")
	}

	res, err := accounts.Delete(ctx, owner, a.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if res.DeletedAccountID != a.ID || res.DeletedTransactionsCount != 3 {
		t.Errorf("Delete() = %+v, want 3 transactions removed", res)
	}

	_, err = accounts.Detail(ctx, owner, a.ID, 0, 0)
	wantKind(t, err, core.ErrNotFound)

	_, err = accounts.Delete(ctx, owner, a.ID)
	wantKind(t, err, core.ErrConflict)

	events := pub.published()
	if len(events) != 1 || events[0].Type != amqp.EventAccountDeleted || events[0].DeletedTransactions != 3 {
		t.Errorf("published = %+v, want one account.deleted event", events)
	}
}

func TestAccountService_List(t *testing.T) {
	svc := NewAccountService(newStore(t), nil)
	ctx := context.Background()
	openAccount(t, svc, owner, 0)
	openAccount(t, svc, owner, 0)
	openAccount(t, svc, otherOwner, 0)

	views, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("List() = %d accounts, want 2", len(views))
	}
	for _, v := range views {
		if v.MaskedNumber != "123456****" {
			t.Errorf("MaskedNumber = %q", v.MaskedNumber)
		}
	}
}
