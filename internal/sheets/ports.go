package sheets

import (
	"context"

	"finledger/internal/core"
)

// RowKind distinguishes exported postings from account closures.
type RowKind string

const (
	RowPosting RowKind = "posting"
	RowClosure RowKind = "closure"
)

// LedgerRow is one exported line. Account numbers are always masked.
type LedgerRow struct {
	EventID       string
	Kind          RowKind
	Date          core.Date
	OwnerID       int64
	AccountID     int64
	BankName      string
	AccountNumber string
	Type          core.TransactionType
	Amount        core.Money
	Description   string
	Category      string
}

// LedgerWriter appends exported rows to an outbound sink.
type LedgerWriter interface {
	AppendRow(ctx context.Context, row LedgerRow) error
}
