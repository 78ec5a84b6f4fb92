package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain/catalogs/account"
	"finbooks/internal/infrastructure/storage/postgres"
)

const accountTable = "cat_accounts"

var _ account.Repository = (*AccountRepo)(nil)

// AccountRepo implements account.Repository.
type AccountRepo struct {
	*BaseCatalogRepo[*account.Account]
}

// NewAccountRepo creates a new account repository.
func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*account.Account](
			accountTable,
			postgres.ExtractDBColumns[account.Account](),
			func() *account.Account { return &account.Account{} },
		),
	}
}

// ListByType retrieves all non-deleted accounts of the given types.
func (r *AccountRepo) ListByType(ctx context.Context, accountTypes ...account.Type) ([]*account.Account, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"account_type": accountTypes}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code ASC")

	return r.FindAll(ctx, q)
}

// ApplyBalanceDelta atomically adds delta to the account's running balance.
// Must run inside the poster's transaction.
func (r *AccountRepo) ApplyBalanceDelta(ctx context.Context, accountID id.ID, delta types.Money) error {
	q := r.Builder().
		Update(accountTable).
		Set("balance", squirrel.Expr("balance + ?", delta)).
		Where(squirrel.Eq{"id": accountID}).
		Where(r.tenantEq(ctx))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build balance delta: %w", err)
	}

	result, err := r.getTxManager(ctx).GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("account", accountID.String())
	}

	return nil
}
