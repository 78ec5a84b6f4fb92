// Package stock provides the stock intent register service.
package stock

import (
	"context"
	"fmt"
	"time"

	"finbooks/internal/core/id"
	"finbooks/pkg/logger"
)

// Service provides business operations for the stock intent register.
// Transactions are managed by the caller (the document posting flow).
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EmitIntents records stock intents from a document posting.
// This is called during document posting within a transaction.
func (s *Service) EmitIntents(ctx context.Context, intents []Intent) error {
	if len(intents) == 0 {
		return nil
	}

	for i := range intents {
		if err := intents[i].Validate(); err != nil {
			return err
		}
	}

	if err := s.repo.CreateIntents(ctx, intents); err != nil {
		return fmt.Errorf("create stock intents: %w", err)
	}

	logger.Info(ctx, "emitted stock intents",
		"count", len(intents),
		"recorder_id", intents[0].RecorderID,
	)

	return nil
}

// ReverseIntents compensates a document's intents on cancellation: each
// open intent gets a mirror emitted with the opposite direction, then the
// originals are flagged so a second cancellation finds nothing to reverse.
func (s *Service) ReverseIntents(ctx context.Context, recorderID id.ID) error {
	intents, err := s.repo.GetByRecorder(ctx, recorderID)
	if err != nil {
		return fmt.Errorf("get stock intents: %w", err)
	}
	if len(intents) == 0 {
		return nil
	}

	mirrors := make([]Intent, 0, len(intents))
	for _, in := range intents {
		mirror := NewIntent(in.RecorderID, in.RecorderType, time.Now(), in.ItemID, in.Quantity, in.Direction.Opposite())
		mirror.TenantID = in.TenantID
		mirror.BranchID = in.BranchID
		mirror.Reversed = true
		mirrors = append(mirrors, mirror)
	}
	if err := s.repo.CreateIntents(ctx, mirrors); err != nil {
		return fmt.Errorf("create compensating intents: %w", err)
	}
	if err := s.repo.MarkReversed(ctx, recorderID); err != nil {
		return fmt.Errorf("mark intents reversed: %w", err)
	}

	logger.Info(ctx, "reversed stock intents",
		"recorder_id", recorderID,
		"count", len(mirrors),
	)

	return nil
}

// History lists intents for an item.
func (s *Service) History(ctx context.Context, itemID id.ID, from, to time.Time, limit, offset int) ([]Intent, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.repo.History(ctx, itemID, from, to, limit, offset)
}
