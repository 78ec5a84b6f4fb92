package register_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"finbooks/internal/core/id"
	"finbooks/internal/core/tenant"
	"finbooks/internal/core/types"
	"finbooks/internal/domain/payments"
	"finbooks/internal/infrastructure/storage/postgres"
)

const advancesTable = "reg_counterparty_advances"

var _ payments.AdvanceStore = (*AdvanceRepo)(nil)

// AdvanceRepo implements payments.AdvanceStore. One row per counterparty
// holds the running unapplied amount; mutations are atomic increments.
type AdvanceRepo struct{}

// NewAdvanceRepo creates a new advance store.
func NewAdvanceRepo() *AdvanceRepo {
	return &AdvanceRepo{}
}

func (r *AdvanceRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// BalanceForUpdate returns the advance with the row locked.
// Missing rows read as zero.
func (r *AdvanceRepo) BalanceForUpdate(ctx context.Context, counterpartyID id.ID) (types.Money, error) {
	sql := `
		SELECT balance FROM ` + advancesTable + `
		WHERE tenant_id = $1 AND counterparty_id = $2
		FOR UPDATE`

	return r.scanBalance(ctx, sql, counterpartyID)
}

// Balance is the lock-free read.
func (r *AdvanceRepo) Balance(ctx context.Context, counterpartyID id.ID) (types.Money, error) {
	sql := `
		SELECT balance FROM ` + advancesTable + `
		WHERE tenant_id = $1 AND counterparty_id = $2`

	return r.scanBalance(ctx, sql, counterpartyID)
}

func (r *AdvanceRepo) scanBalance(ctx context.Context, sql string, counterpartyID id.ID) (types.Money, error) {
	var balance types.Money
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, tenant.TenantID(ctx), counterpartyID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Zero(), nil
	}
	if err != nil {
		return types.Zero(), fmt.Errorf("advance balance: %w", err)
	}
	return balance, nil
}

// Add increments the advance by delta (negative to draw down);
// upserts the row on first use.
func (r *AdvanceRepo) Add(ctx context.Context, counterpartyID id.ID, delta types.Money) error {
	sql := `
		INSERT INTO ` + advancesTable + ` (tenant_id, counterparty_id, balance, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (tenant_id, counterparty_id)
		DO UPDATE SET balance = ` + advancesTable + `.balance + EXCLUDED.balance, updated_at = NOW()`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, tenant.TenantID(ctx), counterpartyID, delta); err != nil {
		return fmt.Errorf("add advance: %w", err)
	}

	return nil
}
