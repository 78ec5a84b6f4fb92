package trade

import (
	"context"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain/credit"
	"finbooks/internal/domain/payments"
)

// PaymentBridge exposes trade documents to the payment allocator and the
// credit controller without either package importing this one.
type PaymentBridge struct {
	repo Repository
}

// NewPaymentBridge creates the bridge over a trade repository.
func NewPaymentBridge(repo Repository) *PaymentBridge {
	return &PaymentBridge{repo: repo}
}

var (
	_ payments.DocumentPort = (*PaymentBridge)(nil)
	_ credit.BalanceSource  = (*PaymentBridge)(nil)
)

// GetOpenForUpdate implements payments.DocumentPort. Only issued,
// uncancelled, settleable documents accept allocations.
func (b *PaymentBridge) GetOpenForUpdate(ctx context.Context, documentID id.ID) (*payments.OpenDocument, error) {
	doc, err := b.repo.GetForUpdate(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.Posted || doc.Cancelled {
		return nil, apperror.NewBusinessRule("DOCUMENT_NOT_OPEN",
			"document is not open for settlement").
			WithDetail("document_id", documentID.String())
	}
	if !doc.IsPayable() {
		return nil, apperror.NewValidation("document type cannot be settled").
			WithDetail("type", string(doc.Type))
	}

	return &payments.OpenDocument{
		ID:             doc.ID,
		Number:         doc.Number,
		CounterpartyID: doc.CounterpartyID,
		TotalAmount:    doc.TotalAmount,
		PaidAmount:     doc.PaidAmount,
		BalanceAmount:  doc.BalanceAmount,
		Receivable:     doc.Receivable(),
	}, nil
}

// ApplyPayment implements payments.DocumentPort.
func (b *PaymentBridge) ApplyPayment(ctx context.Context, documentID id.ID, delta types.Money) error {
	return b.repo.ApplyPayment(ctx, documentID, delta)
}

// UnpaidReceivableTotal implements credit.BalanceSource.
func (b *PaymentBridge) UnpaidReceivableTotal(ctx context.Context, counterpartyID id.ID) (types.Money, error) {
	return b.repo.UnpaidReceivableTotal(ctx, counterpartyID)
}
