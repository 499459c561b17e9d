// Package services holds the ledger's business operations. Each service
// validates its input, talks to storage through a narrow interface and
// publishes ledger events after a successful commit.
package services

import (
	"context"

	"finledger/internal/amqp"
	"finledger/internal/log"
)

// Publisher emits ledger events. *amqp.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// publishEvent never fails the caller: the change is already committed, so
// a broker outage only costs the downstream export.
func publishEvent(ctx context.Context, p Publisher, event *amqp.LedgerEvent) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentAMQP)
	if p == nil {
		logger.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event",
			log.FieldEventType, string(event.Type))
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventID, event.ID,
			log.FieldEventType, string(event.Type),
			log.FieldError, err)
	}
}
