package domain

import (
	"context"

	"finbooks/internal/core/id"
)

// Event types emitted by the posting services.
const (
	EventDocumentIssued    = "document.issued"
	EventDocumentCancelled = "document.cancelled"
	EventPaymentRecorded   = "payment.recorded"
	EventPaymentCancelled  = "payment.cancelled"
)

// Event is a domain occurrence recorded for asynchronous delivery.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	Type          string
	Payload       any
}

// EventPublisher records events inside the caller's transaction so that
// emission commits or rolls back together with the mutation. The relay
// worker delivers recorded events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
