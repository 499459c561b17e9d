package core

import (
	"strings"
	"time"
)

type AccountType string

const (
	AccountChecking   AccountType = "Checking"
	AccountCreditCard AccountType = "Credit Card"
	AccountSavings    AccountType = "Savings"
	AccountInvestment AccountType = "Investment"
	AccountLoan       AccountType = "Loan"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountChecking, AccountCreditCard, AccountSavings, AccountInvestment, AccountLoan:
		return true
	}
	return false
}

// Account is a user-owned ledger account. Balance changes only through postings.
type Account struct {
	ID            int64       `json:"id"`
	OwnerID       int64       `json:"-"`
	BankName      string      `json:"bank_name"`
	Type          AccountType `json:"account_type"`
	BranchName    string      `json:"branch_name,omitempty"`
	AccountNumber string      `json:"-"`
	Last4         string      `json:"last4"`
	Balance       Money       `json:"balance"`
	CreatedAt     time.Time   `json:"created_at"`
	DeletedAt     *time.Time  `json:"-"`
}

// MaskedNumber is the display form of the account number.
func (a Account) MaskedNumber() string {
	return MaskAccountNumber(a.AccountNumber)
}

// IsDeleted reports whether the account has been soft-deleted.
func (a Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// LastFour returns the final four characters, or the whole number when shorter.
func LastFour(number string) string {
	r := []rune(number)
	if len(r) <= 4 {
		return number
	}
	return string(r[len(r)-4:])
}

// MaskAccountNumber keeps everything but the last four characters and
// replaces those with "****". Numbers of four characters or fewer are
// masked entirely.
func MaskAccountNumber(number string) string {
	r := []rune(number)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:len(r)-4]) + "****"
}

// AccountInput is the payload for opening an account.
type AccountInput struct {
	BankName       string      `json:"bank_name"`
	Type           AccountType `json:"account_type"`
	BranchName     string      `json:"branch_name"`
	AccountNumber  string      `json:"account_number"`
	InitialBalance Money       `json:"balance"`
}

func (in *AccountInput) Normalize() {
	in.BankName = strings.TrimSpace(in.BankName)
	in.BranchName = strings.TrimSpace(in.BranchName)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
}

func (in AccountInput) Validate() error {
	if in.BankName == "" {
		return Validationf("bank name is required")
	}
	if len(in.BankName) > 100 {
		return Validationf("bank name too long (max 100 characters)")
	}
	if !in.Type.IsValid() {
		return Validationf("invalid account type %q", in.Type)
	}
	if in.AccountNumber == "" {
		return Validationf("account number is required")
	}
	if in.InitialBalance.IsNegative() {
		return Validationf("initial balance cannot be negative")
	}
	return nil
}

// Account builds the account row the input describes.
func (in AccountInput) Account(ownerID int64) Account {
	return Account{
		OwnerID:       ownerID,
		BankName:      in.BankName,
		Type:          in.Type,
		BranchName:    in.BranchName,
		AccountNumber: in.AccountNumber,
		Last4:         LastFour(in.AccountNumber),
		Balance:       in.InitialBalance,
	}
}

// AccountPatch carries the fields of a partial update. Nil means unchanged.
// The balance is not patchable.
type AccountPatch struct {
	BankName      *string      `json:"bank_name"`
	Type          *AccountType `json:"account_type"`
	BranchName    *string      `json:"branch_name"`
	AccountNumber *string      `json:"account_number"`
}

func (p AccountPatch) Validate() error {
	if p.BankName != nil && strings.TrimSpace(*p.BankName) == "" {
		return Validationf("bank name cannot be empty")
	}
	if p.Type != nil && !p.Type.IsValid() {
		return Validationf("invalid account type %q", *p.Type)
	}
	if p.AccountNumber != nil && strings.TrimSpace(*p.AccountNumber) == "" {
		return Validationf("account number cannot be empty")
	}
	return nil
}

// Apply merges the provided fields into a, re-deriving last4 when the
// number changes.
func (p AccountPatch) Apply(a *Account) {
	if p.BankName != nil {
		a.BankName = strings.TrimSpace(*p.BankName)
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.BranchName != nil {
		a.BranchName = strings.TrimSpace(*p.BranchName)
	}
	if p.AccountNumber != nil {
		a.AccountNumber = strings.TrimSpace(*p.AccountNumber)
		a.Last4 = LastFour(a.AccountNumber)
	}
}

// AccountView is the account as returned to its owner.
type AccountView struct {
	Account
	MaskedNumber string `json:"account_number"`
}

func NewAccountView(a Account) AccountView {
	return AccountView{Account: a, MaskedNumber: a.MaskedNumber()}
}

// AccountDetail is an account with one page of its postings.
type AccountDetail struct {
	AccountView
	Transactions Page[TransactionEntry] `json:"transactions"`
}

// AccountDeletion reports the outcome of a soft delete.
type AccountDeletion struct {
	DeletedAccountID         int64 `json:"deleted_account_id"`
	DeletedTransactionsCount int   `json:"deleted_transactions_count"`
}
