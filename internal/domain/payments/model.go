// Package payments provides payment recording and allocation.
//
// A payment moves money in (receipt from a customer) or out (payment to a
// vendor) and distributes the amount across outstanding documents. Any
// unallocated remainder becomes a counterparty advance; later payments may
// draw existing advances down before consuming fresh money. Every payment
// appends exactly one aggregate movement to the counterparty's running
// ledger and posts one journal entry.
package payments

import (
	"context"
	"time"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/entity"
	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
)

// Direction of money flow.
type Direction string

const (
	// DirectionInbound is money received (customer receipt)
	DirectionInbound Direction = "inbound"
	// DirectionOutbound is money paid out (vendor payment)
	DirectionOutbound Direction = "outbound"
)

// Method of payment.
type Method string

const (
	MethodCash     Method = "cash"
	MethodBank     Method = "bank"
	MethodUPI      Method = "upi"
	MethodCheque   Method = "cheque"
	MethodCard     Method = "card"
	MethodAdjusted Method = "adjusted"
)

// Allocation links part of a payment to one financial document.
type Allocation struct {
	ID        id.ID `db:"id" json:"id"`
	PaymentID id.ID `db:"payment_id" json:"paymentId"`

	DocumentID id.ID `db:"document_id" json:"documentId"`

	// DocumentNumber is denormalized for statements
	DocumentNumber string `db:"document_number" json:"documentNumber"`

	Amount types.Money `db:"amount" json:"amount"`

	// FromAdvance marks the part of this allocation covered by drawing
	// down an existing advance instead of fresh money
	FromAdvance types.Money `db:"from_advance" json:"fromAdvance"`
}

// Payment is a recorded money movement with its allocations.
type Payment struct {
	entity.Document

	Direction      Direction `db:"direction" json:"direction"`
	CounterpartyID id.ID     `db:"counterparty_id" json:"counterpartyId"`
	Method         Method    `db:"method" json:"method"`

	Amount types.Money `db:"amount" json:"amount"`

	// AllocatedAmount = sum of allocation amounts covered by this
	// payment's fresh money (excludes advance drawdown)
	AllocatedAmount types.Money `db:"allocated_amount" json:"allocatedAmount"`

	// UnallocatedAmount = Amount - AllocatedAmount; became an advance
	UnallocatedAmount types.Money `db:"unallocated_amount" json:"unallocatedAmount"`

	// AdvanceUsed is the existing advance drawn down by this payment
	AdvanceUsed types.Money `db:"advance_used" json:"advanceUsed"`

	// Reference is the external reference (UTR, cheque number)
	Reference *string `db:"reference" json:"reference,omitempty"`

	Cancelled bool `db:"cancelled" json:"cancelled"`

	Allocations []Allocation `db:"-" json:"allocations"`
}

// NewPayment creates a payment document shell.
func NewPayment(branchID, counterpartyID id.ID, direction Direction, method Method, amount types.Money, date time.Time) *Payment {
	doc := entity.NewDocument(branchID)
	doc.Date = date
	return &Payment{
		Document:       doc,
		Direction:      direction,
		CounterpartyID: counterpartyID,
		Method:         method,
		Amount:         amount,
	}
}

// Validate implements entity.Validatable.
func (p *Payment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.CounterpartyID) {
		return apperror.NewValidation("payment requires a counterparty").
			WithDetail("field", "counterpartyId")
	}
	if p.Direction != DirectionInbound && p.Direction != DirectionOutbound {
		return apperror.NewValidation("invalid payment direction").
			WithDetail("field", "direction").
			WithDetail("value", string(p.Direction))
	}
	if !isValidMethod(p.Method) {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "method").
			WithDetail("value", string(p.Method))
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", p.Amount.String())
	}

	var total types.Money
	for i := range p.Allocations {
		a := &p.Allocations[i]
		if id.IsNil(a.DocumentID) {
			return apperror.NewValidation("allocation requires a document").
				WithDetail("allocation", i)
		}
		if !a.Amount.IsPositive() {
			return apperror.NewValidation("allocation amount must be positive").
				WithDetail("allocation", i).
				WithDetail("value", a.Amount.String())
		}
		total = total.Add(a.Amount)
	}

	return nil
}

// TotalAllocated is the sum of all allocation amounts, including any part
// covered by advance drawdown.
func (p *Payment) TotalAllocated() types.Money {
	var total types.Money
	for i := range p.Allocations {
		total = total.Add(p.Allocations[i].Amount)
	}
	return total
}

func isValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodBank, MethodUPI, MethodCheque, MethodCard, MethodAdjusted:
		return true
	}
	return false
}
