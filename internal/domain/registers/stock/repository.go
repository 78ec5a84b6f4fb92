package stock

import (
	"context"
	"time"

	"finbooks/internal/core/id"
)

// Repository defines operations for the stock intent register.
type Repository interface {
	// CreateIntents batch inserts intents (used during posting).
	CreateIntents(ctx context.Context, intents []Intent) error

	// GetByRecorder retrieves all non-reversed intents for a document.
	GetByRecorder(ctx context.Context, recorderID id.ID) ([]Intent, error)

	// MarkReversed flags a document's intents as compensated.
	MarkReversed(ctx context.Context, recorderID id.ID) error

	// History lists intents for an item, newest first.
	History(ctx context.Context, itemID id.ID, from, to time.Time, limit, offset int) ([]Intent, error)
}
