package account

import (
	"context"

	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain"
)

// Repository defines the interface for Account persistence.
type Repository interface {
	domain.CatalogRepository[*Account]

	// ListByType retrieves all non-deleted accounts of the given types.
	ListByType(ctx context.Context, types ...Type) ([]*Account, error)

	// ApplyBalanceDelta atomically adds delta to the account's running
	// balance (UPDATE ... SET balance = balance + $1). Must run inside
	// the poster's transaction.
	ApplyBalanceDelta(ctx context.Context, accountID id.ID, delta types.Money) error
}
