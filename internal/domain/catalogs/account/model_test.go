package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/types"
)

func TestNormalSide(t *testing.T) {
	assert.Equal(t, Debit, NormalSide(TypeAsset))
	assert.Equal(t, Debit, NormalSide(TypeExpense))
	assert.Equal(t, Debit, NormalSide(TypeCOGS))
	assert.Equal(t, Credit, NormalSide(TypeLiability))
	assert.Equal(t, Credit, NormalSide(TypeEquity))
	assert.Equal(t, Credit, NormalSide(TypeIncome))
}

func TestBalanceDelta(t *testing.T) {
	asset := NewAccount("1100", "Accounts Receivable", TypeAsset)
	income := NewAccount("4001", "Sales", TypeIncome)

	// debit 500 + credit 200 on an asset account -> +300
	delta := asset.BalanceDelta(types.MustMoney("500"), types.MustMoney("200"))
	assert.True(t, delta.Equal(types.MustMoney("300")), "delta = %s", delta)

	// same movement on an income account -> -300
	delta = income.BalanceDelta(types.MustMoney("500"), types.MustMoney("200"))
	assert.True(t, delta.Equal(types.MustMoney("-300")), "delta = %s", delta)
}

func TestAccount_Validate(t *testing.T) {
	ctx := context.Background()

	acc := NewAccount("1001", "Cash in Hand", TypeAsset)
	acc.Subtype = SubtypeCurrent
	require.NoError(t, acc.Validate(ctx))

	acc.Type = "revenue"
	err := acc.Validate(ctx)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	acc = NewAccount("1001", "Cash in Hand", TypeAsset)
	acc.Subtype = "intangible"
	require.Error(t, acc.Validate(ctx))
}

func TestDefaultChart_CoversSystemCodes(t *testing.T) {
	chart := DefaultChart()

	byCode := make(map[string]SeedAccount, len(chart))
	for _, row := range chart {
		byCode[row.Code] = row
	}

	for _, code := range []string{
		CodeCash, CodeBank, CodeAccountsReceivable, CodeAccountsPayable,
		CodeCGSTPayable, CodeSGSTPayable, CodeIGSTPayable,
		CodeCustomerAdvances, CodeSales, CodeCOGS,
		CodeDiscountGiven, CodeDiscountReceived,
	} {
		_, ok := byCode[code]
		assert.True(t, ok, "chart missing system code %s", code)
	}

	assert.Equal(t, TypeLiability, byCode[CodeCustomerAdvances].Type)
	assert.Equal(t, TypeCOGS, byCode[CodeCOGS].Type)
	assert.Equal(t, TypeExpense, byCode[CodeDiscountGiven].Type)
	assert.Equal(t, TypeIncome, byCode[CodeDiscountReceived].Type)
}

func TestType_OnBalanceSheet(t *testing.T) {
	assert.True(t, TypeAsset.OnBalanceSheet())
	assert.True(t, TypeLiability.OnBalanceSheet())
	assert.True(t, TypeEquity.OnBalanceSheet())
	assert.False(t, TypeIncome.OnBalanceSheet())
	assert.False(t, TypeExpense.OnBalanceSheet())
	assert.False(t, TypeCOGS.OnBalanceSheet())
}
