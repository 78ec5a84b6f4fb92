// Package counterparty provides the counterparty ledger register service.
package counterparty

import (
	"context"
	"fmt"
	"time"

	"finbooks/internal/core/id"
	"finbooks/internal/core/tenant"
	"finbooks/internal/core/types"
	"finbooks/pkg/logger"
)

// Service provides business operations for the counterparty ledger.
// Transactions are managed by the caller (document/payment flows); the
// running-balance read-then-append relies on the caller's transaction
// holding the per-counterparty lock.
type Service struct {
	repo Repository
}

// NewService creates a new counterparty ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append records one movement and returns the inserted entry carrying the
// new running balance. Must be called within a transaction.
func (s *Service) Append(ctx context.Context, mv Movement) (*LedgerEntry, error) {
	if err := mv.Validate(); err != nil {
		return nil, err
	}

	prev, _, err := s.repo.LatestBalanceForUpdate(ctx, mv.CounterpartyID)
	if err != nil {
		return nil, fmt.Errorf("lock counterparty ledger: %w", err)
	}

	entryDate := mv.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now()
	}
	entry := &LedgerEntry{
		ID:             id.New(),
		TenantID:       tenant.TenantID(ctx),
		CounterpartyID: mv.CounterpartyID,
		EntryDate:      entryDate,
		SourceType:     mv.SourceType,
		SourceID:       mv.SourceID,
		DocumentNumber: mv.DocumentNumber,
		Debit:          mv.Debit,
		Credit:         mv.Credit,
		Balance:        prev.Add(mv.Debit).Sub(mv.Credit),
		CreatedAt:      time.Now(),
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	logger.Debug(ctx, "counterparty ledger movement",
		"counterparty_id", mv.CounterpartyID,
		"source", mv.SourceType,
		"balance", entry.Balance,
	)

	return entry, nil
}

// Reverse appends mirror movements for everything a source produced.
// The ledger is append-only, so cancellation compensates instead of
// deleting.
func (s *Service) Reverse(ctx context.Context, sourceType SourceType, sourceID id.ID) error {
	entries, err := s.repo.FindBySource(ctx, sourceType, sourceID)
	if err != nil {
		return fmt.Errorf("find ledger entries: %w", err)
	}
	for _, e := range entries {
		_, err := s.Append(ctx, Movement{
			CounterpartyID: e.CounterpartyID,
			SourceType:     SourceReversal,
			SourceID:       sourceID,
			DocumentNumber: e.DocumentNumber,
			Debit:          e.Credit,
			Credit:         e.Debit,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Balance returns the counterparty's latest running balance; ok=false when
// the counterparty has no ledger history yet.
func (s *Service) Balance(ctx context.Context, counterpartyID id.ID) (types.Money, bool, error) {
	return s.repo.LatestBalance(ctx, counterpartyID)
}

// BalanceForUpdate locks and returns the latest running balance for flows
// that must read-check-append atomically (credit control, payments).
func (s *Service) BalanceForUpdate(ctx context.Context, counterpartyID id.ID) (types.Money, bool, error) {
	return s.repo.LatestBalanceForUpdate(ctx, counterpartyID)
}

// Statement lists a counterparty's movements, oldest first.
func (s *Service) Statement(ctx context.Context, counterpartyID id.ID, from, to time.Time, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.repo.Statement(ctx, counterpartyID, from, to, limit, offset)
}
