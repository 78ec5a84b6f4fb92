package trade

import (
	"context"
	"time"

	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain"
)

// ListFilter narrows trade document listings.
type ListFilter struct {
	Type             *DocumentType
	CounterpartyID   *id.ID
	BranchID         *id.ID
	PaymentStatus    *PaymentStatus
	From, To         *time.Time
	IncludeCancelled bool

	Limit  int
	Offset int
}

// Repository defines persistence for trade documents.
type Repository interface {
	// Create inserts the document with its lines.
	Create(ctx context.Context, d *TradeDocument) error

	// GetByID retrieves the document with lines.
	GetByID(ctx context.Context, documentID id.ID) (*TradeDocument, error)

	// GetForUpdate retrieves the document with a row lock.
	GetForUpdate(ctx context.Context, documentID id.ID) (*TradeDocument, error)

	// UpdateHeader persists header fields with optimistic locking. Lines
	// are immutable once the document is posted.
	UpdateHeader(ctx context.Context, d *TradeDocument) error

	// ApplyPayment atomically increments paid_amount by delta and
	// re-derives balance_amount and payment_status in the same statement.
	ApplyPayment(ctx context.Context, documentID id.ID, delta types.Money) error

	// List retrieves documents matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*TradeDocument], error)

	// UnpaidReceivableTotal sums balance_amount over issued, uncancelled
	// receivable documents of one counterparty.
	UnpaidReceivableTotal(ctx context.Context, counterpartyID id.ID) (types.Money, error)
}
