package core

import (
	"strings"
	"time"
)

type TransactionType string

const (
	TransactionRevenue TransactionType = "Revenue"
	TransactionExpense TransactionType = "Expense"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionRevenue || t == TransactionExpense
}

type TransactionStatus string

const (
	StatusComplete TransactionStatus = "Complete"
	StatusPending  TransactionStatus = "Pending"
	StatusFailed   TransactionStatus = "Failed"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusComplete, StatusPending, StatusFailed:
		return true
	}
	return false
}

// TransactionFilter narrows a listing by type.
type TransactionFilter string

const (
	FilterAll     TransactionFilter = "All"
	FilterRevenue TransactionFilter = "Revenue"
	FilterExpense TransactionFilter = "Expense"
)

// ParseTransactionFilter maps the query value onto a filter; empty means All.
func ParseTransactionFilter(s string) (TransactionFilter, error) {
	switch TransactionFilter(strings.TrimSpace(s)) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterRevenue:
		return FilterRevenue, nil
	case FilterExpense:
		return FilterExpense, nil
	}
	return "", Validationf("invalid transaction type %q: must be All, Revenue or Expense", s)
}

// Transaction is a single posting. Amount is always positive; the type
// carries the sign.
type Transaction struct {
	ID            int64             `json:"id"`
	AccountID     int64             `json:"account_id"`
	Date          Date              `json:"date"`
	Type          TransactionType   `json:"type"`
	Description   string            `json:"description"`
	ShopName      string            `json:"shop_name,omitempty"`
	Amount        Money             `json:"amount"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Status        TransactionStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	Expense       *ExpenseDetail    `json:"expense_detail,omitempty"`
}

// SignedAmount is negative for expenses and positive for revenue.
func (t Transaction) SignedAmount() Money {
	if t.Type == TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// ExpenseDetail classifies an expense posting.
type ExpenseDetail struct {
	ID                int64  `json:"id"`
	TransactionID     int64  `json:"transaction_id"`
	CategoryID        int64  `json:"category_id"`
	CategoryName      string `json:"category_name,omitempty"`
	SubCategoryName   string `json:"sub_category_name,omitempty"`
	SubCategoryAmount Money  `json:"sub_category_amount"`
}

// TransactionEntry is a posting as listed to its owner, amount signed.
type TransactionEntry struct {
	ID            int64             `json:"id"`
	AccountID     int64             `json:"account_id"`
	BankName      string            `json:"bank_name,omitempty"`
	Date          Date              `json:"date"`
	Type          TransactionType   `json:"type"`
	Description   string            `json:"description"`
	ShopName      string            `json:"shop_name,omitempty"`
	Amount        Money             `json:"amount"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Status        TransactionStatus `json:"status"`
	CategoryName  string            `json:"category_name,omitempty"`
}

// NewTransactionEntry flattens a posting for listing.
func NewTransactionEntry(t Transaction, bankName string) TransactionEntry {
	e := TransactionEntry{
		ID:            t.ID,
		AccountID:     t.AccountID,
		BankName:      bankName,
		Date:          t.Date,
		Type:          t.Type,
		Description:   t.Description,
		ShopName:      t.ShopName,
		Amount:        t.SignedAmount(),
		PaymentMethod: t.PaymentMethod,
		Status:        t.Status,
	}
	if t.Expense != nil {
		e.CategoryName = t.Expense.CategoryName
	}
	return e
}

// TransactionInput is the payload for posting a transaction.
type TransactionInput struct {
	AccountID         int64             `json:"account_id"`
	Type              TransactionType   `json:"type"`
	Description       string            `json:"description"`
	Amount            Money             `json:"amount"`
	Date              Date              `json:"date"`
	CategoryID        *int64            `json:"category_id"`
	SubCategoryName   string            `json:"sub_category_name"`
	SubCategoryAmount *Money            `json:"sub_category_amount"`
	ShopName          string            `json:"shop_name"`
	PaymentMethod     string            `json:"payment_method"`
	Status            TransactionStatus `json:"status"`
}

// Normalize trims text fields and applies the default status.
func (in *TransactionInput) Normalize() {
	in.Description = strings.TrimSpace(in.Description)
	in.SubCategoryName = strings.TrimSpace(in.SubCategoryName)
	in.ShopName = strings.TrimSpace(in.ShopName)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if in.Status == "" {
		in.Status = StatusComplete
	}
}

func (in TransactionInput) Validate() error {
	if in.AccountID <= 0 {
		return Validationf("account id is required")
	}
	if !in.Type.IsValid() {
		return Validationf("invalid transaction type %q: must be Revenue or Expense", in.Type)
	}
	if in.Description == "" {
		return Validationf("description is required")
	}
	if len(in.Description) > 200 {
		return Validationf("description too long (max 200 characters)")
	}
	if !in.Amount.IsPositive() {
		return Validationf("amount must be greater than zero")
	}
	if in.Date.IsZero() {
		return Validationf("date is required")
	}
	if !in.Status.IsValid() {
		return Validationf("invalid status %q", in.Status)
	}
	if in.Type == TransactionExpense {
		if in.CategoryID == nil || *in.CategoryID <= 0 {
			return Validationf("category id is required for expenses")
		}
		if in.SubCategoryAmount == nil {
			return Validationf("sub category amount is required for expenses")
		}
		if !in.SubCategoryAmount.IsPositive() {
			return Validationf("sub category amount must be greater than zero")
		}
		if in.SubCategoryAmount.Cents > in.Amount.Cents {
			return Validationf("sub category amount cannot exceed the transaction amount")
		}
	}
	return nil
}

// Transaction builds the posting the input describes. Revenue never
// carries an expense detail.
func (in TransactionInput) Transaction() Transaction {
	t := Transaction{
		AccountID:     in.AccountID,
		Date:          in.Date,
		Type:          in.Type,
		Description:   in.Description,
		ShopName:      in.ShopName,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		Status:        in.Status,
	}
	if in.Type == TransactionExpense && in.CategoryID != nil && in.SubCategoryAmount != nil {
		t.Expense = &ExpenseDetail{
			CategoryID:        *in.CategoryID,
			SubCategoryName:   in.SubCategoryName,
			SubCategoryAmount: *in.SubCategoryAmount,
		}
	}
	return t
}

// ApplyTo returns the balance after posting t. An expense that would take
// the balance below zero fails with ErrInsufficientFunds; a revenue that
// would overflow the balance fails validation.
func (t Transaction) ApplyTo(balance Money) (Money, error) {
	next, ok := balance.CheckedAdd(t.SignedAmount())
	if !ok {
		return balance, Validationf("balance %s cannot absorb %s", balance, t.Amount)
	}
	if t.Type == TransactionExpense && next.IsNegative() {
		return balance, InsufficientFundsf("insufficient funds: balance %s, expense %s", balance, t.Amount)
	}
	return next, nil
}
