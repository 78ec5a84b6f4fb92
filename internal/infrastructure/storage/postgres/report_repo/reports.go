// Package report_repo provides the PostgreSQL read model behind the
// financial statements. Only posted journal entries contribute.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"finbooks/internal/core/tenant"
	"finbooks/internal/domain/reports"
	"finbooks/internal/infrastructure/storage/postgres"
)

var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *ReportRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// AccountTurnover aggregates debits and credits per account within the
// window, joined with account metadata.
func (r *ReportRepo) AccountTurnover(ctx context.Context, from, to time.Time) ([]reports.TrialBalanceRow, error) {
	sql := `
		SELECT a.id            AS account_id,
		       a.code          AS account_code,
		       a.name          AS account_name,
		       a.account_type  AS account_type,
		       COALESCE(SUM(l.debit), 0)  AS total_debit,
		       COALESCE(SUM(l.credit), 0) AS total_credit
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		JOIN cat_accounts a    ON a.id = l.account_id
		WHERE e.tenant_id = $1
		  AND e.status = 'posted'
		  AND e.date >= $2 AND e.date <= $3
		GROUP BY a.id, a.code, a.name, a.account_type
		ORDER BY a.code`

	var rows []reports.TrialBalanceRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, tenant.TenantID(ctx), from, to); err != nil {
		return nil, fmt.Errorf("account turnover: %w", err)
	}

	return rows, nil
}

// AccountBalancesAsOf computes closing balances from inception to asOf,
// signed on each account's normal side.
func (r *ReportRepo) AccountBalancesAsOf(ctx context.Context, asOf time.Time) ([]reports.BalanceRow, error) {
	sql := `
		SELECT a.id              AS account_id,
		       a.code            AS account_code,
		       a.name            AS account_name,
		       a.account_type    AS account_type,
		       a.account_subtype AS account_subtype,
		       COALESCE(SUM(
		           CASE WHEN a.account_type IN ('asset', 'expense', 'cogs')
		                THEN l.debit - l.credit
		                ELSE l.credit - l.debit
		           END
		       ), 0) AS balance
		FROM cat_accounts a
		LEFT JOIN journal_lines l   ON l.account_id = a.id
		LEFT JOIN journal_entries e ON e.id = l.entry_id
		       AND e.status = 'posted'
		       AND e.date <= $2
		WHERE a.tenant_id = $1
		  AND a.deletion_mark = false
		GROUP BY a.id, a.code, a.name, a.account_type, a.account_subtype
		ORDER BY a.code`

	var rows []reports.BalanceRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, tenant.TenantID(ctx), asOf); err != nil {
		return nil, fmt.Errorf("account balances: %w", err)
	}

	return rows, nil
}

// CashMovements nets the window's movements through cash and bank
// accounts, grouped by the counter-account of each entry line.
//
// The attribution is a heuristic: within one entry, the cash delta is
// assigned to the entry's non-cash lines proportionally to their share
// of the non-cash total.
func (r *ReportRepo) CashMovements(ctx context.Context, from, to time.Time) ([]reports.CashMovement, error) {
	sql := `
		WITH entries_with_cash AS (
		    SELECT e.id,
		           SUM(CASE WHEN ca.code IN ('1001', '1002')
		                    THEN l.debit - l.credit ELSE 0 END) AS cash_delta,
		           SUM(CASE WHEN ca.code NOT IN ('1001', '1002')
		                    THEN l.debit + l.credit ELSE 0 END) AS counter_total
		    FROM journal_entries e
		    JOIN journal_lines l  ON l.entry_id = e.id
		    JOIN cat_accounts ca  ON ca.id = l.account_id
		    WHERE e.tenant_id = $1
		      AND e.status = 'posted'
		      AND e.date >= $2 AND e.date <= $3
		    GROUP BY e.id
		    HAVING SUM(CASE WHEN ca.code IN ('1001', '1002')
		                    THEN l.debit - l.credit ELSE 0 END) <> 0
		)
		SELECT a.id           AS counter_account_id,
		       a.code         AS counter_account_code,
		       a.name         AS counter_account_name,
		       a.account_type AS counter_account_type,
		       COALESCE(SUM(
		           ec.cash_delta * ((l.debit + l.credit) / NULLIF(ec.counter_total, 0))
		       ), 0) AS net
		FROM entries_with_cash ec
		JOIN journal_lines l ON l.entry_id = ec.id
		JOIN cat_accounts a  ON a.id = l.account_id
		WHERE a.code NOT IN ('1001', '1002')
		GROUP BY a.id, a.code, a.name, a.account_type
		ORDER BY a.code`

	var rows []reports.CashMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, tenant.TenantID(ctx), from, to); err != nil {
		return nil, fmt.Errorf("cash movements: %w", err)
	}

	return rows, nil
}

// Builder exposes the statement builder for ad-hoc report extensions.
func (r *ReportRepo) Builder() squirrel.StatementBuilderType {
	return r.builder
}
