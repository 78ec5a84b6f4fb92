// Package counterparty provides the Counterparty catalog.
// Counterparties represent business partners: customers, vendors, or both.
package counterparty

import (
	"context"
	"regexp"
	"strings"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/entity"
	"finbooks/internal/core/types"
)

// Pre-compiled regex patterns for validation (performance optimization)
var (
	whitespaceRE = regexp.MustCompile(`\s`)
	// GSTIN: 2-digit state code, 10-char PAN, entity code, 'Z', checksum (15 chars)
	gstinRE = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)
	// PAN: 5 letters, 4 digits, 1 letter
	panRE   = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// CounterpartyType defines the type of counterparty.
type CounterpartyType string

const (
	TypeCustomer CounterpartyType = "customer"
	TypeVendor   CounterpartyType = "vendor"
	TypeBoth     CounterpartyType = "both"
)

// Counterparty represents a business partner (customer, vendor, or both).
type Counterparty struct {
	entity.Catalog

	// Type defines whether this is a customer, vendor, or both
	Type CounterpartyType `db:"type" json:"type"`

	// LegalName is the official registered name
	LegalName *string `db:"legal_name" json:"legalName,omitempty"`

	// GSTIN is the GST registration number; empty for unregistered parties
	GSTIN *string `db:"gstin" json:"gstin,omitempty"`

	// PAN is the permanent account number
	PAN *string `db:"pan" json:"pan,omitempty"`

	// BillingState decides intrastate vs interstate tax treatment
	BillingState *string `db:"billing_state" json:"billingState,omitempty"`

	// BillingAddress is the invoice address
	BillingAddress *string `db:"billing_address" json:"billingAddress,omitempty"`

	// ShippingAddress is the delivery address
	ShippingAddress *string `db:"shipping_address" json:"shippingAddress,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// CreditLimit caps outstanding receivables for customers. Zero = unlimited.
	CreditLimit types.Money `db:"credit_limit" json:"creditLimit"`

	// CreditOverride bypasses the credit-limit gate for this party
	CreditOverride bool `db:"credit_override" json:"creditOverride"`

	// OpeningBalance is the receivable (positive) or payable (negative)
	// carried in at go-live. Used when no ledger entries exist yet.
	OpeningBalance types.Money `db:"opening_balance" json:"openingBalance"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCounterparty creates a new Counterparty with required fields.
func NewCounterparty(code, name string, cpType CounterpartyType) *Counterparty {
	return &Counterparty{
		Catalog: entity.NewCatalog(code, name),
		Type:    cpType,
	}
}

// Validate implements entity.Validatable interface.
func (c *Counterparty) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidCounterpartyType(c.Type) {
		return apperror.NewValidation("invalid counterparty type").
			WithDetail("field", "type").
			WithDetail("value", string(c.Type))
	}

	if c.GSTIN != nil && *c.GSTIN != "" {
		cleaned := normalizeTaxID(*c.GSTIN)
		if !gstinRE.MatchString(cleaned) {
			return apperror.NewValidation("invalid GSTIN format").
				WithDetail("field", "gstin").
				WithDetail("value", *c.GSTIN)
		}
		// PAN is embedded in GSTIN positions 3-12; cross-check when both given
		if c.PAN != nil && *c.PAN != "" && normalizeTaxID(*c.PAN) != cleaned[2:12] {
			return apperror.NewValidation("PAN does not match GSTIN").
				WithDetail("field", "pan")
		}
	}

	if c.PAN != nil && *c.PAN != "" && !panRE.MatchString(normalizeTaxID(*c.PAN)) {
		return apperror.NewValidation("invalid PAN format").
			WithDetail("field", "pan").
			WithDetail("value", *c.PAN)
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if c.CreditLimit.IsNegative() {
		return apperror.NewValidation("credit limit cannot be negative").
			WithDetail("field", "creditLimit").
			WithDetail("value", c.CreditLimit.String())
	}

	return nil
}

// IsCustomer returns true if counterparty buys from us.
func (c *Counterparty) IsCustomer() bool {
	return c.Type == TypeCustomer || c.Type == TypeBoth
}

// IsVendor returns true if counterparty sells to us.
func (c *Counterparty) IsVendor() bool {
	return c.Type == TypeVendor || c.Type == TypeBoth
}

// GSTStateCode returns the 2-digit state code embedded in the GSTIN,
// empty when unregistered.
func (c *Counterparty) GSTStateCode() string {
	if c.GSTIN == nil || len(*c.GSTIN) < 2 {
		return ""
	}
	return normalizeTaxID(*c.GSTIN)[:2]
}

func isValidCounterpartyType(t CounterpartyType) bool {
	switch t {
	case TypeCustomer, TypeVendor, TypeBoth:
		return true
	}
	return false
}

func normalizeTaxID(s string) string {
	return strings.ToUpper(whitespaceRE.ReplaceAllString(s, ""))
}
