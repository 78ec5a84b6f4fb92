package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/types"
	"finbooks/internal/domain/catalogs/account"
)

// Service generates financial statements from posted journal activity.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetTrialBalance lists per-account turnover for the window and checks
// that total debits equal total credits.
func (s *Service) GetTrialBalance(ctx context.Context, filter TrialBalanceFilter) (*TrialBalance, error) {
	if filter.To.IsZero() {
		filter.To = time.Now()
	}
	if !filter.From.IsZero() && filter.From.After(filter.To) {
		return nil, apperror.NewValidation("from must be before to")
	}

	rows, err := s.repo.AccountTurnover(ctx, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("account turnover: %w", err)
	}

	report := &TrialBalance{From: filter.From, To: filter.To}
	for _, row := range rows {
		if filter.ExcludeZero && row.TotalDebit.IsZero() && row.TotalCredit.IsZero() {
			continue
		}
		report.Rows = append(report.Rows, row)
		report.TotalDebit = report.TotalDebit.Add(row.TotalDebit)
		report.TotalCredit = report.TotalCredit.Add(row.TotalCredit)
	}
	report.Balanced = types.WithinEpsilon(report.TotalDebit, report.TotalCredit)

	return report, nil
}

// GetBalanceSheet builds the statement of financial position as of a date.
// Accumulated income and expense balances fold into equity as retained
// earnings so the sheet always balances when the ledger does.
func (s *Service) GetBalanceSheet(ctx context.Context, asOf time.Time) (*BalanceSheet, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	rows, err := s.repo.AccountBalancesAsOf(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("account balances: %w", err)
	}

	report := &BalanceSheet{
		AsOf:        asOf,
		Assets:      BalanceSheetSection{Title: "Assets"},
		Liabilities: BalanceSheetSection{Title: "Liabilities"},
		Equity:      BalanceSheetSection{Title: "Equity"},
	}

	for _, row := range rows {
		if row.Balance.IsZero() {
			continue
		}
		bsRow := BalanceSheetRow{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			Subtype:     row.Subtype,
			Balance:     row.Balance,
		}
		switch row.AccountType {
		case account.TypeAsset:
			report.Assets.Rows = append(report.Assets.Rows, bsRow)
			report.Assets.Total = report.Assets.Total.Add(row.Balance)
		case account.TypeLiability:
			report.Liabilities.Rows = append(report.Liabilities.Rows, bsRow)
			report.Liabilities.Total = report.Liabilities.Total.Add(row.Balance)
		case account.TypeEquity:
			report.Equity.Rows = append(report.Equity.Rows, bsRow)
			report.Equity.Total = report.Equity.Total.Add(row.Balance)
		case account.TypeIncome:
			report.RetainedEarnings = report.RetainedEarnings.Add(row.Balance)
		case account.TypeExpense, account.TypeCOGS:
			report.RetainedEarnings = report.RetainedEarnings.Sub(row.Balance)
		}
	}

	report.Equity.Total = report.Equity.Total.Add(report.RetainedEarnings)
	report.Balanced = types.WithinEpsilon(
		report.Assets.Total,
		report.Liabilities.Total.Add(report.Equity.Total),
	)

	return report, nil
}

// GetProfitLoss builds the income statement for a period from the
// turnover of income, COGS and expense accounts.
func (s *Service) GetProfitLoss(ctx context.Context, from, to time.Time) (*ProfitLoss, error) {
	if from.IsZero() || to.IsZero() {
		return nil, apperror.NewValidation("from and to are required")
	}
	if from.After(to) {
		return nil, apperror.NewValidation("from must be before to")
	}

	rows, err := s.repo.AccountTurnover(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("account turnover: %w", err)
	}

	report := &ProfitLoss{From: from, To: to}
	for _, row := range rows {
		plRow := ProfitLossRow{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
		}
		switch row.AccountType {
		case account.TypeIncome:
			// Income grows on credit
			plRow.Amount = row.TotalCredit.Sub(row.TotalDebit)
			report.Income = append(report.Income, plRow)
			report.TotalIncome = report.TotalIncome.Add(plRow.Amount)
		case account.TypeCOGS:
			plRow.Amount = row.TotalDebit.Sub(row.TotalCredit)
			report.COGS = append(report.COGS, plRow)
			report.TotalCOGS = report.TotalCOGS.Add(plRow.Amount)
		case account.TypeExpense:
			plRow.Amount = row.TotalDebit.Sub(row.TotalCredit)
			report.Expenses = append(report.Expenses, plRow)
			report.TotalExpenses = report.TotalExpenses.Add(plRow.Amount)
		}
	}
	report.GrossProfit = report.TotalIncome.Sub(report.TotalCOGS)
	report.NetProfit = report.GrossProfit.Sub(report.TotalExpenses)

	return report, nil
}

// Keyword heuristic for cash-flow classification. Checked against the
// lower-cased counter-account name; first match wins.
var (
	investingKeywords = []string{"equipment", "machinery", "vehicle", "furniture", "asset", "investment", "property"}
	financingKeywords = []string{"loan", "capital", "equity", "dividend", "drawing", "borrowing"}
)

// GetCashFlow nets the period's movements through cash and bank accounts
// and classifies them by counter-account. The classification is a
// best-effort heuristic; movements it cannot place land in operating.
func (s *Service) GetCashFlow(ctx context.Context, from, to time.Time) (*CashFlow, error) {
	if from.IsZero() || to.IsZero() {
		return nil, apperror.NewValidation("from and to are required")
	}
	if from.After(to) {
		return nil, apperror.NewValidation("from must be before to")
	}

	movements, err := s.repo.CashMovements(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("cash movements: %w", err)
	}

	report := &CashFlow{From: from, To: to}
	for _, mv := range movements {
		item := CashFlowItem{
			Activity:    classifyCashMovement(mv),
			Description: mv.CounterAccountName,
			Amount:      mv.Net,
		}
		switch item.Activity {
		case ActivityInvesting:
			report.Investing = append(report.Investing, item)
			report.NetInvesting = report.NetInvesting.Add(item.Amount)
		case ActivityFinancing:
			report.Financing = append(report.Financing, item)
			report.NetFinancing = report.NetFinancing.Add(item.Amount)
		default:
			report.Operating = append(report.Operating, item)
			report.NetOperating = report.NetOperating.Add(item.Amount)
		}
	}
	report.NetChange = report.NetOperating.Add(report.NetInvesting).Add(report.NetFinancing)

	// Opening cash = balances of cash/bank accounts just before the window
	opening, err := s.repo.AccountBalancesAsOf(ctx, from.Add(-time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("opening balances: %w", err)
	}
	for _, row := range opening {
		if isCashAccount(row.AccountCode) {
			report.OpeningCash = report.OpeningCash.Add(row.Balance)
		}
	}
	report.ClosingCash = report.OpeningCash.Add(report.NetChange)

	return report, nil
}

func classifyCashMovement(mv CashMovement) CashFlowActivity {
	name := strings.ToLower(mv.CounterAccountName)
	for _, kw := range financingKeywords {
		if strings.Contains(name, kw) {
			return ActivityFinancing
		}
	}
	// Fixed-asset movements are investing regardless of name
	if mv.CounterAccountType == account.TypeAsset {
		for _, kw := range investingKeywords {
			if strings.Contains(name, kw) {
				return ActivityInvesting
			}
		}
	}
	return ActivityOperating
}

func isCashAccount(code string) bool {
	return code == account.CodeCash || code == account.CodeBank
}
