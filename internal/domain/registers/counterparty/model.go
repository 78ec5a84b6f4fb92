// Package counterparty provides the per-counterparty running ledger.
//
// This is a cash-movement ledger distinct from the double-entry journal:
// append-only rows of (debit, credit, resulting balance) per counterparty,
// ordered by entry date then insertion order. For customers debit increases
// what they owe us; for vendors credit increases what we owe them.
package counterparty

import (
	"time"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
)

// SourceType identifies what produced a ledger movement.
type SourceType string

const (
	SourceDocument SourceType = "document"
	SourcePayment  SourceType = "payment"
	SourceAdvance  SourceType = "advance"
	SourceOpening  SourceType = "opening"
	SourceReversal SourceType = "reversal"
)

// LedgerEntry is one append-only movement row.
type LedgerEntry struct {
	ID             id.ID       `db:"id" json:"id"`
	TenantID       id.ID       `db:"tenant_id" json:"-"`
	CounterpartyID id.ID       `db:"counterparty_id" json:"counterpartyId"`
	EntryDate      time.Time   `db:"entry_date" json:"entryDate"`
	SourceType     SourceType  `db:"source_type" json:"sourceType"`
	SourceID       id.ID       `db:"source_id" json:"sourceId"`
	DocumentNumber string      `db:"document_number" json:"documentNumber"`
	Debit          types.Money `db:"debit" json:"debit"`
	Credit         types.Money `db:"credit" json:"credit"`

	// Balance is the running balance after this movement:
	// previous balance + debit - credit.
	Balance types.Money `db:"balance" json:"balance"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Movement is the input for appending one ledger row.
type Movement struct {
	CounterpartyID id.ID
	EntryDate      time.Time
	SourceType     SourceType
	SourceID       id.ID
	DocumentNumber string
	Debit          types.Money
	Credit         types.Money
}

// Validate checks movement invariants.
func (m *Movement) Validate() error {
	if id.IsNil(m.CounterpartyID) {
		return apperror.NewValidation("ledger movement requires a counterparty")
	}
	if m.Debit.IsNegative() || m.Credit.IsNegative() {
		return apperror.NewValidation("ledger movement amounts cannot be negative")
	}
	if m.Debit.IsZero() && m.Credit.IsZero() {
		return apperror.NewValidation("ledger movement requires a debit or credit amount")
	}
	return nil
}
