package register_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"finbooks/internal/core/id"
	"finbooks/internal/core/tenant"
	"finbooks/internal/core/types"
	cpledger "finbooks/internal/domain/registers/counterparty"
	"finbooks/internal/infrastructure/storage/postgres"
)

const counterpartyLedgerTable = "reg_counterparty_ledger"

var _ cpledger.Repository = (*CounterpartyLedgerRepo)(nil)

// CounterpartyLedgerRepo implements the counterparty ledger register.
// The register is append-only; corrections are compensating rows.
type CounterpartyLedgerRepo struct {
	builder squirrel.StatementBuilderType
}

// NewCounterpartyLedgerRepo creates a new counterparty ledger repository.
func NewCounterpartyLedgerRepo() *CounterpartyLedgerRepo {
	return &CounterpartyLedgerRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CounterpartyLedgerRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

var ledgerColumns = []string{
	"id", "tenant_id", "counterparty_id", "entry_date",
	"source_type", "source_id", "document_number",
	"debit", "credit", "balance", "created_at",
}

// Append inserts one movement row. The caller has already computed the
// running balance under a per-counterparty lock.
func (r *CounterpartyLedgerRepo) Append(ctx context.Context, entry *cpledger.LedgerEntry) error {
	rowTenant := entry.TenantID
	if id.IsNil(rowTenant) {
		rowTenant = tenant.TenantID(ctx)
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	q := r.builder.Insert(counterpartyLedgerTable).
		Columns(ledgerColumns...).
		Values(
			entry.ID, rowTenant, entry.CounterpartyID, entry.EntryDate,
			entry.SourceType, entry.SourceID, entry.DocumentNumber,
			entry.Debit, entry.Credit, entry.Balance, createdAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	return nil
}

// LatestBalanceForUpdate returns the newest entry's balance with the
// counterparty catalog row locked for the rest of the transaction. The
// catalog row is the serialization anchor: concurrent appenders for the
// same counterparty queue on it even before the first ledger row exists.
func (r *CounterpartyLedgerRepo) LatestBalanceForUpdate(ctx context.Context, counterpartyID id.ID) (types.Money, bool, error) {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	lockSQL := "SELECT 1 FROM cat_counterparties WHERE id = $1 AND tenant_id = $2 FOR UPDATE"
	var one int
	if err := querier.QueryRow(ctx, lockSQL, counterpartyID, tenant.TenantID(ctx)).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown counterparty reads as empty register
			return types.Zero(), false, nil
		}
		return types.Zero(), false, fmt.Errorf("lock counterparty: %w", err)
	}

	return r.latestBalance(ctx, counterpartyID)
}

// LatestBalance is the lock-free read used by reporting.
func (r *CounterpartyLedgerRepo) LatestBalance(ctx context.Context, counterpartyID id.ID) (types.Money, bool, error) {
	return r.latestBalance(ctx, counterpartyID)
}

func (r *CounterpartyLedgerRepo) latestBalance(ctx context.Context, counterpartyID id.ID) (types.Money, bool, error) {
	q := r.builder.Select("balance").
		From(counterpartyLedgerTable).
		Where(squirrel.Eq{"tenant_id": tenant.TenantID(ctx)}).
		Where(squirrel.Eq{"counterparty_id": counterpartyID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), false, fmt.Errorf("build query: %w", err)
	}

	var balance types.Money
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Zero(), false, nil
		}
		return types.Zero(), false, fmt.Errorf("latest balance: %w", err)
	}

	return balance, true, nil
}

// Statement lists movements for a counterparty in the window, oldest first.
func (r *CounterpartyLedgerRepo) Statement(ctx context.Context, counterpartyID id.ID, from, to time.Time, limit, offset int) ([]cpledger.LedgerEntry, error) {
	q := r.builder.Select(ledgerColumns...).
		From(counterpartyLedgerTable).
		Where(squirrel.Eq{"tenant_id": tenant.TenantID(ctx)}).
		Where(squirrel.Eq{"counterparty_id": counterpartyID}).
		Where(squirrel.GtOrEq{"entry_date": from}).
		Where(squirrel.LtOrEq{"entry_date": to}).
		OrderBy("entry_date", "created_at", "id")

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

	var entries []cpledger.LedgerEntry
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select statement: %w", err)
	}

	return entries, nil
}

// FindBySource retrieves the movements a document or payment produced.
func (r *CounterpartyLedgerRepo) FindBySource(ctx context.Context, sourceType cpledger.SourceType, sourceID id.ID) ([]cpledger.LedgerEntry, error) {
	q := r.builder.Select(ledgerColumns...).
		From(counterpartyLedgerTable).
		Where(squirrel.Eq{"tenant_id": tenant.TenantID(ctx)}).
		Where(squirrel.Eq{"source_type": sourceType}).
		Where(squirrel.Eq{"source_id": sourceID}).
		OrderBy("created_at", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []cpledger.LedgerEntry
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select by source: %w", err)
	}

	return entries, nil
}
