package entity

import (
	"context"
	"time"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
)

// Document is the base type for business transactions.
// Examples: Invoice, Bill, CreditNote, Payment.
type Document struct {
	BaseDocument

	// Number is the rendered document number (drawn from a sequence,
	// unique within tenant+branch+type+financial year)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// BranchID is the owning branch; every numbered document belongs to one
	BranchID id.ID `db:"branch_id" json:"branchId"`

	// Posted indicates if document effects are recorded in registers
	Posted bool `db:"posted" json:"posted"`

	// PostedVersion tracks posting iterations for movement reconciliation
	// Incremented each time document is posted/modified while posted
	PostedVersion int `db:"posted_version" json:"postedVersion"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(branchID id.ID) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		BranchID:     branchID,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.BranchID) {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// CanModify checks if document can be modified.
// Posted documents require cancellation first.
func (d *Document) CanModify() error {
	if d.Posted {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentPosted,
			"Cannot modify posted document.",
		).WithDetail("document_id", d.ID.String())
	}
	return nil
}

// MarkPosted sets the posted flag and advances the posting version.
// The entity version is owned by the repository update, which bumps it
// atomically under the optimistic lock.
func (d *Document) MarkPosted() {
	d.Posted = true
	d.PostedVersion++
}

// MarkUnposted clears the posted flag.
func (d *Document) MarkUnposted() {
	d.Posted = false
}

// --- Postable interface default implementations ---

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// GetPostedVersion returns the current posting version.
func (d *Document) GetPostedVersion() int {
	return d.PostedVersion
}

// IsPosted returns true if document is currently posted.
func (d *Document) IsPosted() bool {
	return d.Posted
}
