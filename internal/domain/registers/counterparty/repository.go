package counterparty

import (
	"context"
	"time"

	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
)

// Repository defines operations for the counterparty ledger register.
type Repository interface {
	// Append inserts one movement row. The caller has already computed
	// the running balance under a per-counterparty lock.
	Append(ctx context.Context, entry *LedgerEntry) error

	// LatestBalanceForUpdate returns the newest entry's balance with the
	// counterparty row locked for the rest of the transaction. ok=false
	// when no entry exists yet.
	LatestBalanceForUpdate(ctx context.Context, counterpartyID id.ID) (balance types.Money, ok bool, err error)

	// LatestBalance is the lock-free read used by reporting.
	LatestBalance(ctx context.Context, counterpartyID id.ID) (balance types.Money, ok bool, err error)

	// Statement lists movements for a counterparty in the window,
	// oldest first.
	Statement(ctx context.Context, counterpartyID id.ID, from, to time.Time, limit, offset int) ([]LedgerEntry, error)

	// FindBySource retrieves the movements a document or payment produced.
	FindBySource(ctx context.Context, sourceType SourceType, sourceID id.ID) ([]LedgerEntry, error)
}
