// Package register_repo provides PostgreSQL implementations for register
// repositories. TxManager is obtained from context; every statement is
// scoped by the tenant in the request context.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"finbooks/internal/core/id"
	"finbooks/internal/core/tenant"
	"finbooks/internal/domain/registers/stock"
	"finbooks/internal/infrastructure/storage/postgres"
)

const stockIntentsTable = "reg_stock_intents"

var _ stock.Repository = (*StockRepo)(nil)

// StockRepo implements stock.Repository.
type StockRepo struct {
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo() *StockRepo {
	return &StockRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *StockRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

var stockIntentColumns = []string{
	"line_id", "tenant_id", "branch_id",
	"recorder_id", "recorder_type", "period",
	"item_id", "quantity", "direction", "reversed", "created_at",
}

// CreateIntents batch inserts intents (used during posting).
func (r *StockRepo) CreateIntents(ctx context.Context, intents []stock.Intent) error {
	if len(intents) == 0 {
		return nil
	}

	tenantID := tenant.TenantID(ctx)

	// Fast path: COPY when inside a transaction.
	txm := r.getTxManager(ctx)
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(intents))
		for _, m := range intents {
			rows = append(rows, r.intentRow(m, tenantID))
		}
		if _, err := inserter.CopyFromSlice(ctx, stockIntentsTable, stockIntentColumns, rows); err != nil {
			return fmt.Errorf("copy intents: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert. Prefer calling CreateIntents within tx.
	q := r.builder.Insert(stockIntentsTable).Columns(stockIntentColumns...)
	for _, m := range intents {
		q = q.Values(r.intentRow(m, tenantID)...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := txm.GetQuerier(ctx)
	if _, err = querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert intents: %w", err)
	}

	return nil
}

func (r *StockRepo) intentRow(m stock.Intent, tenantID id.ID) []any {
	rowTenant := m.TenantID
	if id.IsNil(rowTenant) {
		rowTenant = tenantID
	}
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return []any{
		m.LineID, rowTenant, m.BranchID,
		m.RecorderID, m.RecorderType, m.Period,
		m.ItemID, m.Quantity, m.Direction, m.Reversed, createdAt,
	}
}

// GetByRecorder retrieves all non-reversed intents for a document.
func (r *StockRepo) GetByRecorder(ctx context.Context, recorderID id.ID) ([]stock.Intent, error) {
	q := r.builder.Select(stockIntentColumns...).
		From(stockIntentsTable).
		Where(squirrel.Eq{"tenant_id": tenant.TenantID(ctx)}).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Where(squirrel.Eq{"reversed": false}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var intents []stock.Intent
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &intents, sql, args...); err != nil {
		return nil, fmt.Errorf("select intents: %w", err)
	}

	return intents, nil
}

// MarkReversed flags a document's intents as compensated.
func (r *StockRepo) MarkReversed(ctx context.Context, recorderID id.ID) error {
	q := r.builder.Update(stockIntentsTable).
		Set("reversed", true).
		Where(squirrel.Eq{"tenant_id": tenant.TenantID(ctx)}).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Where(squirrel.Eq{"reversed": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err = querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark reversed: %w", err)
	}

	return nil
}

// History lists intents for an item, newest first.
func (r *StockRepo) History(ctx context.Context, itemID id.ID, from, to time.Time, limit, offset int) ([]stock.Intent, error) {
	q := r.builder.Select(stockIntentColumns...).
		From(stockIntentsTable).
		Where(squirrel.Eq{"tenant_id": tenant.TenantID(ctx)}).
		Where(squirrel.Eq{"item_id": itemID}).
		Where(squirrel.GtOrEq{"period": from}).
		Where(squirrel.LtOrEq{"period": to}).
		OrderBy("period DESC", "created_at DESC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var intents []stock.Intent
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &intents, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return intents, nil
}
