// Package numerator provides domain contracts for document auto-numbering.
package numerator

import (
	"time"

	"finbooks/internal/core/id"
)

// ResetPolicy controls when a sequence counter restarts at 1.
type ResetPolicy string

const (
	// ResetNone never restarts the counter.
	ResetNone ResetPolicy = "none"

	// ResetYearly restarts the counter when the financial year changes.
	// The restart happens inside the same atomic step as the draw, so a
	// crash between reset and draw can never hand out 1 twice.
	ResetYearly ResetPolicy = "yearly"
)

// Config holds numbering configuration for one document type.
type Config struct {
	// Prefix added before the counter (e.g. "INV-", "BILL-")
	Prefix string

	// Suffix added after the counter, before the year separator
	Suffix string

	// PadWidth is the minimum counter width (default 4)
	PadWidth int

	// Reset: none or yearly
	Reset ResetPolicy
}

// DefaultConfig returns the standard configuration for a document type.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: 4,
		Reset:    ResetYearly,
	}
}

// Key identifies one sequence row: (tenant, branch, document type).
type Key struct {
	TenantID     id.ID
	BranchID     id.ID
	DocumentType string
}

// String renders the key for logs and cache maps.
func (k Key) String() string {
	return k.TenantID.String() + ":" + k.BranchID.String() + ":" + k.DocumentType
}

// Draw is the result of one successful counter draw. The document being
// created is assigned Value; the stored counter has advanced to Value+1.
type Draw struct {
	// Value is the pre-increment counter value assigned to the document
	Value int64

	// Number is the fully rendered document number
	Number string

	// FiscalTag is the financial-year tag the draw was made under
	FiscalTag string

	// At is the business date the draw was made for
	At time.Time
}
