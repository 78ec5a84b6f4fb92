package payments

import (
	"context"
	"time"

	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain"
)

// Repository defines the interface for Payment persistence.
type Repository interface {
	// Create inserts the payment header and its allocations.
	Create(ctx context.Context, p *Payment) error

	// GetByID retrieves a payment with allocations.
	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)

	// GetForUpdate retrieves a payment with a row lock on the header.
	GetForUpdate(ctx context.Context, paymentID id.ID) (*Payment, error)

	// MarkCancelled flags the payment with optimistic-lock check.
	MarkCancelled(ctx context.Context, p *Payment) error

	// List retrieves payments matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error)
}

// ListFilter narrows payment queries.
type ListFilter struct {
	CounterpartyID *id.ID
	Direction      *Direction
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}

// AdvanceStore holds the running unapplied amount per counterparty.
// Mutations are expressed as atomic increments, never read-then-overwrite.
type AdvanceStore interface {
	// BalanceForUpdate returns the advance with the row locked.
	// Missing rows read as zero.
	BalanceForUpdate(ctx context.Context, counterpartyID id.ID) (types.Money, error)

	// Balance is the lock-free read.
	Balance(ctx context.Context, counterpartyID id.ID) (types.Money, error)

	// Add increments the advance by delta (negative to draw down);
	// upserts the row on first use.
	Add(ctx context.Context, counterpartyID id.ID, delta types.Money) error
}

// OpenDocument is the payment-facing view of a financial document.
type OpenDocument struct {
	ID             id.ID       `db:"id" json:"id"`
	Number         string      `db:"number" json:"number"`
	CounterpartyID id.ID       `db:"counterparty_id" json:"counterpartyId"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`
	PaidAmount     types.Money `db:"paid_amount" json:"paidAmount"`
	BalanceAmount  types.Money `db:"balance_amount" json:"balanceAmount"`

	// Receivable documents (sales invoices) settle against inbound
	// payments, payable documents against outbound ones.
	Receivable bool `db:"receivable" json:"receivable"`
}

// DocumentPort is the contract the trade-document store exposes to the
// allocator. Implementations update paid/balance/status atomically
// (paid_amount = paid_amount + delta) inside the caller's transaction.
type DocumentPort interface {
	// GetOpenForUpdate retrieves an open (posted, uncancelled) document
	// with a row lock.
	GetOpenForUpdate(ctx context.Context, documentID id.ID) (*OpenDocument, error)

	// ApplyPayment increments paid_amount by delta and re-derives
	// balance_amount and payment_status in the same statement.
	ApplyPayment(ctx context.Context, documentID id.ID, delta types.Money) error
}
