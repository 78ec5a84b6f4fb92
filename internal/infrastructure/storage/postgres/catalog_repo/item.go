package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"finbooks/internal/core/apperror"
	"finbooks/internal/domain/catalogs/item"
	"finbooks/internal/infrastructure/storage/postgres"
)

const itemTable = "cat_items"

var _ item.Repository = (*ItemRepo)(nil)

// ItemRepo implements item.Repository.
type ItemRepo struct {
	*BaseCatalogRepo[*item.Item]
}

// NewItemRepo creates a new item repository.
func NewItemRepo() *ItemRepo {
	return &ItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*item.Item](
			itemTable,
			postgres.ExtractDBColumns[item.Item](),
			func() *item.Item { return &item.Item{} },
		),
	}
}

// FindBySKU retrieves item by SKU.
func (r *ItemRepo) FindBySKU(ctx context.Context, sku string) (*item.Item, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"sku": sku}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	it, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("item", sku)
		}
		return nil, err
	}
	return it, nil
}
