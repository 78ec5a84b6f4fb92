// Package stock provides the stock movement-intent register.
//
// The engine does not keep inventory balances. Posting a trade document
// emits movement intents (item, quantity, direction, reference) that the
// inventory collaborator applies independently; cancelling the document
// reverses them. Intents are immutable - they are never updated, only
// compensated.
package stock

import (
	"time"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
)

// Direction of a stock movement.
type Direction string

const (
	// DirectionIn increases stock (purchase, sales return)
	DirectionIn Direction = "in"
	// DirectionOut decreases stock (sale, purchase return)
	DirectionOut Direction = "out"
)

// Intent is one stock movement emitted by a posted document line.
type Intent struct {
	// LineID is the unique identifier for this intent line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	TenantID id.ID `db:"tenant_id" json:"-"`
	BranchID id.ID `db:"branch_id" json:"branchId"`

	// RecorderID is the document that emitted this intent
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type ("invoice", "grn", ...)
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// Period is the business date of the movement
	Period time.Time `db:"period" json:"period"`

	ItemID    id.ID       `db:"item_id" json:"itemId"`
	Quantity  types.Money `db:"quantity" json:"quantity"`
	Direction Direction   `db:"direction" json:"direction"`

	// Reversed marks an intent compensated by document cancellation
	Reversed bool `db:"reversed" json:"reversed"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewIntent creates an intent line for a document.
func NewIntent(recorderID id.ID, recorderType string, period time.Time, itemID id.ID, qty types.Money, dir Direction) Intent {
	return Intent{
		LineID:       id.New(),
		RecorderID:   recorderID,
		RecorderType: recorderType,
		Period:       period,
		ItemID:       itemID,
		Quantity:     qty,
		Direction:    dir,
		CreatedAt:    time.Now().UTC(),
	}
}

// Validate checks intent invariants.
func (i *Intent) Validate() error {
	if id.IsNil(i.RecorderID) {
		return apperror.NewValidation("stock intent requires a recorder")
	}
	if id.IsNil(i.ItemID) {
		return apperror.NewValidation("stock intent requires an item")
	}
	if !i.Quantity.IsPositive() {
		return apperror.NewValidation("stock intent quantity must be positive").
			WithDetail("quantity", i.Quantity.String())
	}
	if i.Direction != DirectionIn && i.Direction != DirectionOut {
		return apperror.NewValidation("invalid stock intent direction").
			WithDetail("direction", string(i.Direction))
	}
	return nil
}

// Opposite returns the compensating direction.
func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}
