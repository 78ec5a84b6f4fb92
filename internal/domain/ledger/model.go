// Package ledger provides double-entry journal entries and account posting.
//
// A journal entry is a set of lines, each debiting or crediting one account.
// Drafts carry no financial effect; posting applies signed balance deltas to
// the referenced accounts atomically, cancellation posts a mirror-image
// reversal. Posted lines are never mutated in place.
package ledger

import (
	"context"
	"time"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/entity"
	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
)

// Status of a journal entry.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPosted    Status = "posted"
	StatusCancelled Status = "cancelled"
)

// SourceType identifies what produced a journal entry.
type SourceType string

const (
	SourceManual   SourceType = "manual"
	SourceDocument SourceType = "document"
	SourcePayment  SourceType = "payment"
	SourceReversal SourceType = "reversal"
	SourceOpening  SourceType = "opening"
)

// JournalLine is one side of a journal entry. Exactly one of Debit/Credit
// is positive; the other is zero.
type JournalLine struct {
	ID      id.ID `db:"id" json:"id"`
	EntryID id.ID `db:"entry_id" json:"entryId"`

	// LineNo preserves display order
	LineNo int `db:"line_no" json:"lineNo"`

	AccountID id.ID `db:"account_id" json:"accountId"`

	Debit  types.Money `db:"debit" json:"debit"`
	Credit types.Money `db:"credit" json:"credit"`

	// Description is an optional per-line narration
	Description *string `db:"description" json:"description,omitempty"`
}

// Validate checks single-line invariants.
func (l *JournalLine) Validate() error {
	if id.IsNil(l.AccountID) {
		return apperror.NewValidation("journal line requires an account").
			WithDetail("line", l.LineNo)
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return apperror.NewValidation("journal line amounts cannot be negative").
			WithDetail("line", l.LineNo)
	}
	debit := l.Debit.IsPositive()
	credit := l.Credit.IsPositive()
	if debit == credit {
		// Both set or both zero
		return apperror.NewValidation("journal line must carry exactly one of debit or credit").
			WithDetail("line", l.LineNo).
			WithDetail("debit", l.Debit.String()).
			WithDetail("credit", l.Credit.String())
	}
	return nil
}

// JournalEntry is a double-entry journal voucher.
type JournalEntry struct {
	entity.Document

	Status Status `db:"status" json:"status"`

	// Source links the entry back to the document or payment that
	// produced it; manual vouchers carry SourceManual and a nil ID.
	SourceType SourceType `db:"source_type" json:"sourceType"`
	SourceID   *id.ID     `db:"source_id" json:"sourceId,omitempty"`

	// ReversalOf points at the entry this one reverses
	ReversalOf *id.ID `db:"reversal_of" json:"reversalOf,omitempty"`

	// Narration is the voucher-level description
	Narration *string `db:"narration" json:"narration,omitempty"`

	TotalDebit  types.Money `db:"total_debit" json:"totalDebit"`
	TotalCredit types.Money `db:"total_credit" json:"totalCredit"`

	// Lines are loaded separately from the lines table
	Lines []JournalLine `db:"-" json:"lines"`
}

// NewJournalEntry creates a draft entry for the branch.
func NewJournalEntry(branchID id.ID, date time.Time) *JournalEntry {
	doc := entity.NewDocument(branchID)
	doc.Date = date
	return &JournalEntry{
		Document:   doc,
		Status:     StatusDraft,
		SourceType: SourceManual,
	}
}

// AddLine appends a line, keeping LineNo and totals consistent.
func (e *JournalEntry) AddLine(accountID id.ID, debit, credit types.Money, description *string) {
	e.Lines = append(e.Lines, JournalLine{
		ID:          id.New(),
		EntryID:     e.ID,
		LineNo:      len(e.Lines) + 1,
		AccountID:   accountID,
		Debit:       debit,
		Credit:      credit,
		Description: description,
	})
	e.recalculateTotals()
}

// Debit appends a debit line.
func (e *JournalEntry) Debit(accountID id.ID, amount types.Money) {
	e.AddLine(accountID, amount, types.Zero(), nil)
}

// Credit appends a credit line.
func (e *JournalEntry) Credit(accountID id.ID, amount types.Money) {
	e.AddLine(accountID, types.Zero(), amount, nil)
}

func (e *JournalEntry) recalculateTotals() {
	var debit, credit types.Money
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	e.TotalDebit = debit
	e.TotalCredit = credit
}

// Validate implements entity.Validatable. A valid entry has at least two
// lines, every line on exactly one side, and equal debit and credit totals
// within the currency tolerance.
func (e *JournalEntry) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}

	if len(e.Lines) < 2 {
		return apperror.NewValidation("journal entry requires at least two lines").
			WithDetail("lines", len(e.Lines))
	}
	for i := range e.Lines {
		if err := e.Lines[i].Validate(); err != nil {
			return err
		}
	}

	e.recalculateTotals()
	if !types.WithinEpsilon(e.TotalDebit, e.TotalCredit) {
		return apperror.NewUnbalancedEntry(e.TotalDebit.String(), e.TotalCredit.String())
	}

	return nil
}

// IsDraft returns true while the entry has no financial effect.
func (e *JournalEntry) IsDraft() bool {
	return e.Status == StatusDraft
}

// CanModify returns an error when the entry is not editable.
func (e *JournalEntry) CanModify() error {
	if e.Status != StatusDraft {
		return apperror.NewBusinessRule(apperror.CodeDocumentPosted,
			"only draft journal entries can be modified").
			WithDetail("status", string(e.Status))
	}
	return nil
}
