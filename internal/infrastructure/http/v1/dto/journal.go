package dto

import (
	"time"

	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain/ledger"
)

// JournalLineRequest is one voucher line.
type JournalLineRequest struct {
	AccountID   id.ID       `json:"accountId" binding:"required"`
	Debit       types.Money `json:"debit"`
	Credit      types.Money `json:"credit"`
	Description *string     `json:"description"`
}

// CreateJournalEntryRequest creates a manual voucher.
type CreateJournalEntryRequest struct {
	BranchID  id.ID                `json:"branchId" binding:"required"`
	Date      time.Time            `json:"date" binding:"required"`
	Narration *string              `json:"narration"`
	Lines     []JournalLineRequest `json:"lines" binding:"required,min=2"`

	// Post transitions the entry to posted in the same call
	Post bool `json:"post"`
}

// ToEntity converts the request to a draft journal entry.
func (r CreateJournalEntryRequest) ToEntity() *ledger.JournalEntry {
	entry := ledger.NewJournalEntry(r.BranchID, r.Date)
	entry.Narration = r.Narration
	for _, l := range r.Lines {
		entry.AddLine(l.AccountID, l.Debit, l.Credit, l.Description)
	}
	return entry
}

// UpdateJournalEntryRequest replaces a draft voucher's header and lines.
type UpdateJournalEntryRequest struct {
	Date      *time.Time           `json:"date"`
	Narration *string              `json:"narration"`
	Lines     []JournalLineRequest `json:"lines" binding:"required,min=2"`
	Version   int                  `json:"version" binding:"required,min=1"`
}

// ApplyTo maps the request onto the existing draft entry.
func (r UpdateJournalEntryRequest) ApplyTo(entry *ledger.JournalEntry) {
	if r.Date != nil {
		entry.Date = *r.Date
	}
	if r.Narration != nil {
		entry.Narration = r.Narration
	}
	entry.Lines = nil
	for _, l := range r.Lines {
		entry.AddLine(l.AccountID, l.Debit, l.Credit, l.Description)
	}
	entry.Version = r.Version
}
