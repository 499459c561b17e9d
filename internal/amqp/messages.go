package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a ledger change the export worker reacts to.
type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventAccountDeleted     EventType = "account.deleted"
)

// LedgerEvent is a lightweight notification. It carries ids only; consumers
// load current state from the database.
type LedgerEvent struct {
	ID                  string    `json:"id"`
	Type                EventType `json:"type"`
	OwnerID             int64     `json:"owner_id"`
	AccountID           int64     `json:"account_id"`
	TransactionID       int64     `json:"transaction_id,omitempty"`
	DeletedTransactions int       `json:"deleted_transactions,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
}

func newEvent(t EventType, ownerID, accountID int64) *LedgerEvent {
	return &LedgerEvent{
		ID:        uuid.NewString(),
		Type:      t,
		OwnerID:   ownerID,
		AccountID: accountID,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransactionCreatedEvent announces a committed posting.
func NewTransactionCreatedEvent(ownerID, accountID, transactionID int64) *LedgerEvent {
	e := newEvent(EventTransactionCreated, ownerID, accountID)
	e.TransactionID = transactionID
	return e
}

// NewAccountDeletedEvent announces a soft-deleted account.
func NewAccountDeletedEvent(ownerID, accountID int64, deletedTransactions int) *LedgerEvent {
	e := newEvent(EventAccountDeleted, ownerID, accountID)
	e.DeletedTransactions = deletedTransactions
	return e
}

// ToJSON converts the message to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", e.ID, err)
	}
	switch e.Type {
	case EventTransactionCreated:
		if e.TransactionID <= 0 {
			return nil, fmt.Errorf("event %s: missing transaction id", e.ID)
		}
	case EventAccountDeleted:
	default:
		return nil, fmt.Errorf("event %s: unknown type %q", e.ID, e.Type)
	}
	if e.OwnerID <= 0 || e.AccountID <= 0 {
		return nil, fmt.Errorf("event %s: missing owner or account id", e.ID)
	}
	return &e, nil
}
