package ledger

import (
	"context"
	"time"

	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain"
)

// Repository defines the interface for journal persistence.
type Repository interface {
	// CreateEntry inserts the entry header and its lines.
	CreateEntry(ctx context.Context, entry *JournalEntry) error

	// GetByID retrieves an entry with its lines.
	GetByID(ctx context.Context, entryID id.ID) (*JournalEntry, error)

	// GetForUpdate retrieves an entry with a row lock on the header.
	GetForUpdate(ctx context.Context, entryID id.ID) (*JournalEntry, error)

	// ReplaceLines deletes and re-inserts the lines of a draft entry.
	ReplaceLines(ctx context.Context, entry *JournalEntry) error

	// UpdateHeader updates header fields with optimistic-lock check.
	UpdateHeader(ctx context.Context, entry *JournalEntry) error

	// Transition moves the entry from one status to another with an
	// optimistic-lock check on entry.Version, persisting the header
	// (number, posted flags) in the same update. On success the
	// implementation sets entry.Status and bumps entry.Version.
	Transition(ctx context.Context, entry *JournalEntry, from, to Status) error

	// List retrieves entries matching the filter, newest first.
	List(ctx context.Context, filter EntryFilter) (domain.ListResult[*JournalEntry], error)

	// FindBySource retrieves the entries produced by a document or payment.
	FindBySource(ctx context.Context, sourceType SourceType, sourceID id.ID) ([]*JournalEntry, error)

	// AccountTurnover aggregates posted debits and credits per account
	// for the period. Accounts without movement are omitted.
	AccountTurnover(ctx context.Context, from, to time.Time) ([]AccountMovement, error)

	// AccountActivity returns posted lines touching an account in the
	// period, ordered by entry date.
	AccountActivity(ctx context.Context, accountID id.ID, from, to time.Time) ([]ActivityLine, error)
}

// EntryFilter narrows List queries.
type EntryFilter struct {
	Status     *Status
	SourceType *SourceType
	BranchID   *id.ID
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// AccountMovement is the per-account turnover aggregate used by reports.
type AccountMovement struct {
	AccountID   id.ID       `db:"account_id" json:"accountId"`
	TotalDebit  types.Money `db:"total_debit" json:"totalDebit"`
	TotalCredit types.Money `db:"total_credit" json:"totalCredit"`
}

// ActivityLine is one posted line joined with its entry header.
type ActivityLine struct {
	EntryID     id.ID       `db:"entry_id" json:"entryId"`
	EntryNumber string      `db:"entry_number" json:"entryNumber"`
	Date        time.Time   `db:"date" json:"date"`
	Debit       types.Money `db:"debit" json:"debit"`
	Credit      types.Money `db:"credit" json:"credit"`
	Description *string     `db:"description" json:"description,omitempty"`
}
