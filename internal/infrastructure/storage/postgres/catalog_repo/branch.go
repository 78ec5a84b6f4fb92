package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"finbooks/internal/domain/catalogs/branch"
	"finbooks/internal/infrastructure/storage/postgres"
)

const branchTable = "cat_branches"

var _ branch.Repository = (*BranchRepo)(nil)

// BranchRepo implements branch.Repository.
type BranchRepo struct {
	*BaseCatalogRepo[*branch.Branch]
}

// NewBranchRepo creates a new branch repository.
func NewBranchRepo() *BranchRepo {
	return &BranchRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*branch.Branch](
			branchTable,
			postgres.ExtractDBColumns[branch.Branch](),
			func() *branch.Branch { return &branch.Branch{} },
		),
	}
}

// GetDefault retrieves the tenant's default branch.
func (r *BranchRepo) GetDefault(ctx context.Context) (*branch.Branch, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}
