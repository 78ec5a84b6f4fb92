package item

import (
	"context"

	"finbooks/internal/domain"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	domain.CatalogRepository[*Item]

	// FindBySKU retrieves item by SKU (unique within tenant).
	FindBySKU(ctx context.Context, sku string) (*Item, error)
}
