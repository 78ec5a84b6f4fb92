package counterparty

import (
	"context"

	"finbooks/internal/core/id"
	"finbooks/internal/domain"
)

// Repository defines the interface for Counterparty persistence.
type Repository interface {
	domain.CatalogRepository[*Counterparty]

	// FindByGSTIN retrieves counterparty by GSTIN (unique within tenant).
	FindByGSTIN(ctx context.Context, gstin string) (*Counterparty, error)

	// GetForUpdate retrieves counterparty with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Counterparty, error)
}
