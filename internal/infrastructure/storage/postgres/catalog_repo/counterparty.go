package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/domain/catalogs/counterparty"
	"finbooks/internal/infrastructure/storage/postgres"
)

const counterpartyTable = "cat_counterparties"

// Compile-time check.
var _ counterparty.Repository = (*CounterpartyRepo)(nil)

// CounterpartyRepo implements counterparty.Repository.
type CounterpartyRepo struct {
	*BaseCatalogRepo[*counterparty.Counterparty]
}

// NewCounterpartyRepo creates a new counterparty repository.
func NewCounterpartyRepo() *CounterpartyRepo {
	return &CounterpartyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*counterparty.Counterparty](
			counterpartyTable,
			postgres.ExtractDBColumns[counterparty.Counterparty](),
			func() *counterparty.Counterparty { return &counterparty.Counterparty{} },
		),
	}
}

// FindByGSTIN retrieves counterparty by GSTIN.
func (r *CounterpartyRepo) FindByGSTIN(ctx context.Context, gstin string) (*counterparty.Counterparty, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"gstin": gstin}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	cp, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("counterparty", gstin)
		}
		return nil, err
	}
	return cp, nil
}

// GetForUpdate retrieves counterparty with row lock.
func (r *CounterpartyRepo) GetForUpdate(ctx context.Context, cpID id.ID) (*counterparty.Counterparty, error) {
	return r.BaseCatalogRepo.GetForUpdate(ctx, cpID)
}
