// Package reports provides financial statement generation.
package reports

import (
	"time"

	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain/catalogs/account"
)

// --- Trial Balance ---

// TrialBalanceFilter defines the reporting window. Zero From means
// inception-to-date.
type TrialBalanceFilter struct {
	From time.Time
	To   time.Time

	// ExcludeZero drops accounts whose debit and credit totals are both zero
	ExcludeZero bool
}

// TrialBalanceRow is one account's turnover within the window.
type TrialBalanceRow struct {
	AccountID   id.ID        `json:"accountId"`
	AccountCode string       `json:"accountCode"`
	AccountName string       `json:"accountName"`
	AccountType account.Type `json:"accountType"`
	TotalDebit  types.Money  `json:"totalDebit"`
	TotalCredit types.Money  `json:"totalCredit"`
}

// TrialBalance is the full statement. A balanced ledger always has
// TotalDebit == TotalCredit.
type TrialBalance struct {
	From        time.Time         `json:"from,omitempty"`
	To          time.Time         `json:"to"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  types.Money       `json:"totalDebit"`
	TotalCredit types.Money       `json:"totalCredit"`
	Balanced    bool              `json:"balanced"`
}

// --- Balance Sheet ---

// BalanceSheetSection groups accounts of one type.
type BalanceSheetSection struct {
	Title string            `json:"title"`
	Rows  []BalanceSheetRow `json:"rows"`
	Total types.Money       `json:"total"`
}

// BalanceSheetRow is one account's closing balance on its normal side.
type BalanceSheetRow struct {
	AccountID   id.ID           `json:"accountId"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Subtype     account.Subtype `json:"subtype"`
	Balance     types.Money     `json:"balance"`
}

// BalanceSheet is the statement of financial position as of a date.
// RetainedEarnings folds accumulated income and expense into equity so
// that Assets == Liabilities + Equity.
type BalanceSheet struct {
	AsOf             time.Time           `json:"asOf"`
	Assets           BalanceSheetSection `json:"assets"`
	Liabilities      BalanceSheetSection `json:"liabilities"`
	Equity           BalanceSheetSection `json:"equity"`
	RetainedEarnings types.Money         `json:"retainedEarnings"`
	Balanced         bool                `json:"balanced"`
}

// --- Profit & Loss ---

// ProfitLossRow is one income/expense account's period movement.
type ProfitLossRow struct {
	AccountID   id.ID       `json:"accountId"`
	AccountCode string      `json:"accountCode"`
	AccountName string      `json:"accountName"`
	Amount      types.Money `json:"amount"`
}

// ProfitLoss is the income statement for a period.
type ProfitLoss struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Income        []ProfitLossRow `json:"income"`
	COGS          []ProfitLossRow `json:"cogs"`
	Expenses      []ProfitLossRow `json:"expenses"`
	TotalIncome   types.Money     `json:"totalIncome"`
	TotalCOGS     types.Money     `json:"totalCogs"`
	GrossProfit   types.Money     `json:"grossProfit"`
	TotalExpenses types.Money     `json:"totalExpenses"`
	NetProfit     types.Money     `json:"netProfit"`
}

// --- Cash Flow ---

// CashFlowActivity classifies a movement bucket.
type CashFlowActivity string

const (
	ActivityOperating CashFlowActivity = "operating"
	ActivityInvesting CashFlowActivity = "investing"
	ActivityFinancing CashFlowActivity = "financing"
)

// CashFlowItem is one counter-account's net effect on cash.
type CashFlowItem struct {
	Activity    CashFlowActivity `json:"activity"`
	Description string           `json:"description"`
	Amount      types.Money      `json:"amount"`
}

// CashFlow is the period movement through cash and bank accounts,
// classified by counter-account. Classification is a keyword heuristic
// over account names and types; unmatched movements land in operating.
type CashFlow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	OpeningCash types.Money    `json:"openingCash"`
	Operating   []CashFlowItem `json:"operating"`
	Investing   []CashFlowItem `json:"investing"`
	Financing   []CashFlowItem `json:"financing"`

	NetOperating types.Money `json:"netOperating"`
	NetInvesting types.Money `json:"netInvesting"`
	NetFinancing types.Money `json:"netFinancing"`
	NetChange    types.Money `json:"netChange"`
	ClosingCash  types.Money `json:"closingCash"`
}
