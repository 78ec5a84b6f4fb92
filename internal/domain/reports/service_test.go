package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain/catalogs/account"
)

func m(s string) types.Money {
	return types.MustMoney(s)
}

type fakeRepo struct {
	turnover  []TrialBalanceRow
	balances  []BalanceRow
	movements []CashMovement
}

func (r *fakeRepo) AccountTurnover(ctx context.Context, from, to time.Time) ([]TrialBalanceRow, error) {
	return r.turnover, nil
}

func (r *fakeRepo) AccountBalancesAsOf(ctx context.Context, asOf time.Time) ([]BalanceRow, error) {
	return r.balances, nil
}

func (r *fakeRepo) CashMovements(ctx context.Context, from, to time.Time) ([]CashMovement, error) {
	return r.movements, nil
}

func window() (time.Time, time.Time) {
	return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
}

func TestGetTrialBalance(t *testing.T) {
	repo := &fakeRepo{turnover: []TrialBalanceRow{
		{AccountID: id.New(), AccountCode: "1001", AccountName: "Cash", AccountType: account.TypeAsset,
			TotalDebit: m("500"), TotalCredit: m("200")},
		{AccountID: id.New(), AccountCode: "4001", AccountName: "Sales", AccountType: account.TypeIncome,
			TotalDebit: m("0"), TotalCredit: m("300")},
		{AccountID: id.New(), AccountCode: "1200", AccountName: "Inventory", AccountType: account.TypeAsset,
			TotalDebit: m("0"), TotalCredit: m("0")},
	}}
	svc := NewService(repo)
	from, to := window()

	report, err := svc.GetTrialBalance(context.Background(), TrialBalanceFilter{From: from, To: to, ExcludeZero: true})
	require.NoError(t, err)

	assert.Len(t, report.Rows, 2, "zero-turnover account dropped")
	assert.True(t, report.TotalDebit.Equal(m("500")))
	assert.True(t, report.TotalCredit.Equal(m("500")))
	assert.True(t, report.Balanced)
}

func TestGetTrialBalance_DetectsImbalance(t *testing.T) {
	repo := &fakeRepo{turnover: []TrialBalanceRow{
		{AccountCode: "1001", TotalDebit: m("500"), TotalCredit: m("0")},
		{AccountCode: "4001", TotalDebit: m("0"), TotalCredit: m("450")},
	}}
	svc := NewService(repo)
	from, to := window()

	report, err := svc.GetTrialBalance(context.Background(), TrialBalanceFilter{From: from, To: to})
	require.NoError(t, err)
	assert.False(t, report.Balanced)
}

func TestGetTrialBalance_InvalidWindow(t *testing.T) {
	svc := NewService(&fakeRepo{})
	from, to := window()

	_, err := svc.GetTrialBalance(context.Background(), TrialBalanceFilter{From: to, To: from})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestGetBalanceSheet_FoldsRetainedEarnings(t *testing.T) {
	repo := &fakeRepo{balances: []BalanceRow{
		{AccountCode: "1001", AccountName: "Cash", AccountType: account.TypeAsset, Balance: m("800")},
		{AccountCode: "2001", AccountName: "Accounts Payable", AccountType: account.TypeLiability, Balance: m("300")},
		{AccountCode: "3001", AccountName: "Opening Equity", AccountType: account.TypeEquity, Balance: m("200")},
		{AccountCode: "4001", AccountName: "Sales", AccountType: account.TypeIncome, Balance: m("500")},
		{AccountCode: "5101", AccountName: "COGS", AccountType: account.TypeCOGS, Balance: m("200")},
	}}
	svc := NewService(repo)

	report, err := svc.GetBalanceSheet(context.Background(), time.Now())
	require.NoError(t, err)

	assert.True(t, report.Assets.Total.Equal(m("800")))
	assert.True(t, report.Liabilities.Total.Equal(m("300")))
	// retained earnings = 500 income - 200 cogs = 300; equity = 200 + 300
	assert.True(t, report.RetainedEarnings.Equal(m("300")), "re = %s", report.RetainedEarnings)
	assert.True(t, report.Equity.Total.Equal(m("500")))
	assert.True(t, report.Balanced)
}

func TestGetProfitLoss(t *testing.T) {
	repo := &fakeRepo{turnover: []TrialBalanceRow{
		{AccountCode: "4001", AccountName: "Sales", AccountType: account.TypeIncome,
			TotalDebit: m("50"), TotalCredit: m("1050")},
		{AccountCode: "5101", AccountName: "COGS", AccountType: account.TypeCOGS,
			TotalDebit: m("400"), TotalCredit: m("0")},
		{AccountCode: "6001", AccountName: "Rent", AccountType: account.TypeExpense,
			TotalDebit: m("100"), TotalCredit: m("0")},
		{AccountCode: "1001", AccountName: "Cash", AccountType: account.TypeAsset,
			TotalDebit: m("9999"), TotalCredit: m("0")},
	}}
	svc := NewService(repo)
	from, to := window()

	report, err := svc.GetProfitLoss(context.Background(), from, to)
	require.NoError(t, err)

	assert.True(t, report.TotalIncome.Equal(m("1000")), "income = %s", report.TotalIncome)
	assert.True(t, report.TotalCOGS.Equal(m("400")))
	assert.True(t, report.GrossProfit.Equal(m("600")))
	assert.True(t, report.TotalExpenses.Equal(m("100")))
	assert.True(t, report.NetProfit.Equal(m("500")))
	assert.Len(t, report.Income, 1, "balance-sheet accounts excluded")
}

func TestGetCashFlow_Classification(t *testing.T) {
	repo := &fakeRepo{
		movements: []CashMovement{
			{CounterAccountName: "Sales", CounterAccountType: account.TypeIncome, Net: m("1000")},
			{CounterAccountName: "Office Equipment", CounterAccountType: account.TypeAsset, Net: m("-400")},
			{CounterAccountName: "Bank Loan", CounterAccountType: account.TypeLiability, Net: m("500")},
			{CounterAccountName: "Rent Expense", CounterAccountType: account.TypeExpense, Net: m("-100")},
		},
		balances: []BalanceRow{
			{AccountCode: account.CodeCash, AccountType: account.TypeAsset, Balance: m("250")},
			{AccountCode: account.CodeBank, AccountType: account.TypeAsset, Balance: m("750")},
			{AccountCode: "2001", AccountType: account.TypeLiability, Balance: m("9999")},
		},
	}
	svc := NewService(repo)
	from, to := window()

	report, err := svc.GetCashFlow(context.Background(), from, to)
	require.NoError(t, err)

	assert.True(t, report.NetOperating.Equal(m("900")), "operating = %s", report.NetOperating)
	assert.True(t, report.NetInvesting.Equal(m("-400")))
	assert.True(t, report.NetFinancing.Equal(m("500")))
	assert.True(t, report.NetChange.Equal(m("1000")))
	assert.True(t, report.OpeningCash.Equal(m("1000")), "only cash and bank count")
	assert.True(t, report.ClosingCash.Equal(m("2000")))
}
