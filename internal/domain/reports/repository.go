package reports

import (
	"context"
	"time"

	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain/catalogs/account"
)

// BalanceRow is one account's closing balance as of a date, signed on the
// account's normal side.
type BalanceRow struct {
	AccountID   id.ID           `db:"account_id" json:"accountId"`
	AccountCode string          `db:"account_code" json:"accountCode"`
	AccountName string          `db:"account_name" json:"accountName"`
	AccountType account.Type    `db:"account_type" json:"accountType"`
	Subtype     account.Subtype `db:"account_subtype" json:"subtype"`
	Balance     types.Money     `db:"balance" json:"balance"`
}

// CashMovement is the net effect of one counter-account on cash and bank
// accounts within a window. A positive amount is a cash inflow.
type CashMovement struct {
	CounterAccountID   id.ID        `db:"counter_account_id" json:"counterAccountId"`
	CounterAccountCode string       `db:"counter_account_code" json:"counterAccountCode"`
	CounterAccountName string       `db:"counter_account_name" json:"counterAccountName"`
	CounterAccountType account.Type `db:"counter_account_type" json:"counterAccountType"`
	Net                types.Money  `db:"net" json:"net"`
}

// Repository defines the read queries behind the financial statements.
// Only posted journal entries contribute.
type Repository interface {
	// AccountTurnover aggregates debits and credits per account within
	// the window, joined with account metadata.
	AccountTurnover(ctx context.Context, from, to time.Time) ([]TrialBalanceRow, error)

	// AccountBalancesAsOf computes closing balances from inception to asOf.
	AccountBalancesAsOf(ctx context.Context, asOf time.Time) ([]BalanceRow, error)

	// CashMovements nets the window's movements through cash and bank
	// accounts, grouped by counter-account.
	CashMovements(ctx context.Context, from, to time.Time) ([]CashMovement, error)
}
