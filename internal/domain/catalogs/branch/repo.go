package branch

import (
	"context"

	"finbooks/internal/domain"
)

// Repository defines the interface for Branch persistence.
type Repository interface {
	domain.CatalogRepository[*Branch]

	// GetDefault retrieves the tenant's default branch.
	GetDefault(ctx context.Context) (*Branch, error)
}
