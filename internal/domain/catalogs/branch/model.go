// Package branch provides the Branch catalog.
// Branches are the physical or legal locations a tenant issues documents
// from; the branch code doubles as the prefix of generated document numbers.
package branch

import (
	"context"
	"regexp"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/entity"
)

// Branch codes become number-series prefixes ("MUM-INV-0007/24"), so they
// must stay short and unambiguous.
var codeRE = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,7}$`)

// Branch is an issuing location of the tenant.
type Branch struct {
	entity.Catalog

	// GSTIN of the branch registration; branches in different states
	// carry different GSTINs under the same PAN
	GSTIN *string `db:"gstin" json:"gstin,omitempty"`

	// State decides intrastate vs interstate treatment against the
	// counterparty's billing state
	State *string `db:"state" json:"state,omitempty"`

	// Address is the registered address printed on documents
	Address *string `db:"address" json:"address,omitempty"`

	// IsDefault marks the branch used when a request carries no branch scope
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewBranch creates a new Branch with required fields.
func NewBranch(code, name string) *Branch {
	return &Branch{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (b *Branch) Validate(ctx context.Context) error {
	if err := b.Catalog.Validate(ctx); err != nil {
		return err
	}

	// Branch codes are not auto-generated: they are chosen by the tenant
	// and embedded in document numbers, so they are required up front.
	if b.Code == "" {
		return apperror.NewValidation("branch code is required").
			WithDetail("field", "code")
	}
	if !codeRE.MatchString(b.Code) {
		return apperror.NewValidation("branch code must be 2-8 uppercase letters or digits").
			WithDetail("field", "code").
			WithDetail("value", b.Code)
	}

	return nil
}

// NumberPrefix returns the segment prepended to document numbers issued
// from this branch.
func (b *Branch) NumberPrefix() string {
	return b.Code
}
