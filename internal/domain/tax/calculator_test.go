package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/types"
)

func m(s string) types.Money {
	return types.MustMoney(s)
}

func TestComputeLine_InclusiveIntrastate(t *testing.T) {
	// qty 2 @ 118 inclusive, 9% CGST + 9% SGST
	res, err := ComputeLine(LineInput{
		Quantity: m("2"),
		Rate:     m("118"),
		CGSTRate: m("9"),
		SGSTRate: m("9"),
	})
	require.NoError(t, err)

	assert.True(t, res.Gross.Equal(m("236")), "gross = %s", res.Gross)
	assert.True(t, res.TaxableAmount.Equal(m("200")), "taxable = %s", res.TaxableAmount)
	assert.True(t, res.CGST.Equal(m("18")), "cgst = %s", res.CGST)
	assert.True(t, res.SGST.Equal(m("18")), "sgst = %s", res.SGST)
	assert.True(t, res.IGST.IsZero())
	assert.True(t, res.LineTotal.Equal(m("236")), "lineTotal = %s", res.LineTotal)
}

func TestComputeLine_ExclusiveRate(t *testing.T) {
	res, err := ComputeLine(LineInput{
		Quantity:      m("1"),
		Rate:          m("100"),
		IGSTRate:      m("18"),
		RateExclusive: true,
	})
	require.NoError(t, err)

	assert.True(t, res.TaxableAmount.Equal(m("100")))
	assert.True(t, res.IGST.Equal(m("18")))
	assert.True(t, res.LineTotal.Equal(m("118")))
}

func TestComputeLine_LineDiscount(t *testing.T) {
	// 10% off the gross before carving out tax
	res, err := ComputeLine(LineInput{
		Quantity:    m("1"),
		Rate:        m("236"),
		DiscountPct: m("10"),
		CGSTRate:    m("9"),
		SGSTRate:    m("9"),
	})
	require.NoError(t, err)

	assert.True(t, res.DiscountAmount.Equal(m("23.6")), "discount = %s", res.DiscountAmount)
	assert.True(t, res.TaxableAmount.Equal(m("180")), "taxable = %s", res.TaxableAmount)
	assert.True(t, res.LineTotal.Equal(m("212.4")), "lineTotal = %s", res.LineTotal)
}

func TestComputeLine_ZeroRatedSupply(t *testing.T) {
	res, err := ComputeLine(LineInput{
		Quantity: m("3"),
		Rate:     m("50"),
	})
	require.NoError(t, err)

	assert.True(t, res.TaxableAmount.Equal(m("150")))
	assert.True(t, res.TaxAmount().IsZero())
	assert.True(t, res.LineTotal.Equal(m("150")))
}

func TestComputeLine_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input LineInput
	}{
		{
			name:  "negative quantity",
			input: LineInput{Quantity: m("-1"), Rate: m("100")},
		},
		{
			name:  "negative rate",
			input: LineInput{Quantity: m("1"), Rate: m("-100")},
		},
		{
			name:  "negative discount",
			input: LineInput{Quantity: m("1"), Rate: m("100"), DiscountPct: m("-5")},
		},
		{
			name:  "discount over 100",
			input: LineInput{Quantity: m("1"), Rate: m("100"), DiscountPct: m("101")},
		},
		{
			name:  "negative tax rate",
			input: LineInput{Quantity: m("1"), Rate: m("100"), CGSTRate: m("-9")},
		},
		{
			name: "mixed intrastate and interstate heads",
			input: LineInput{
				Quantity: m("1"), Rate: m("100"),
				CGSTRate: m("9"), SGSTRate: m("9"), IGSTRate: m("18"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeLine(tt.input)
			require.Error(t, err)
			assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
		})
	}
}

func TestValidateLine_AcceptsWithinEpsilon(t *testing.T) {
	in := LineInput{
		Quantity: m("2"),
		Rate:     m("118"),
		CGSTRate: m("9"),
		SGSTRate: m("9"),
	}
	supplied := LineResult{
		TaxableAmount: m("200.004"),
		CGST:          m("18.01"),
		SGST:          m("17.99"),
		LineTotal:     m("236.004"),
	}

	assert.NoError(t, ValidateLine(in, supplied))
}

func TestValidateLine_RejectsDrift(t *testing.T) {
	in := LineInput{
		Quantity: m("2"),
		Rate:     m("118"),
		CGSTRate: m("9"),
		SGSTRate: m("9"),
	}
	supplied := LineResult{
		TaxableAmount: m("200"),
		CGST:          m("18"),
		SGST:          m("19.50"), // off by 1.50
		LineTotal:     m("237.50"),
	}

	err := ValidateLine(in, supplied)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "sgst", appErr.Details["field"])
}

func TestComputeDocument_Aggregates(t *testing.T) {
	lines := []LineResult{
		{TaxableAmount: m("200"), CGST: m("18"), SGST: m("18")},
		{TaxableAmount: m("100"), IGST: m("18")},
	}

	totals, err := ComputeDocument(lines, DocumentDiscount{})
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(m("300.00")))
	assert.True(t, totals.TaxAmount.Equal(m("54.00")))
	assert.True(t, totals.CGST.Equal(m("18.00")))
	assert.True(t, totals.IGST.Equal(m("18.00")))
	assert.True(t, totals.Total.Equal(m("354.00")))
}

func TestComputeDocument_PercentTakesPrecedenceOverFlat(t *testing.T) {
	lines := []LineResult{
		{TaxableAmount: m("200"), CGST: m("18"), SGST: m("18")},
	}

	// 10% of the tax-inclusive 236, not the flat 50
	totals, err := ComputeDocument(lines, DocumentDiscount{
		Percent: m("10"),
		Flat:    m("50"),
	})
	require.NoError(t, err)

	assert.True(t, totals.DiscountAmount.Equal(m("23.60")), "discount = %s", totals.DiscountAmount)
	assert.True(t, totals.Total.Equal(m("212.40")), "total = %s", totals.Total)
}

func TestComputeDocument_FlatDiscount(t *testing.T) {
	lines := []LineResult{
		{TaxableAmount: m("100"), IGST: m("18")},
	}

	totals, err := ComputeDocument(lines, DocumentDiscount{Flat: m("18")})
	require.NoError(t, err)

	assert.True(t, totals.DiscountAmount.Equal(m("18.00")))
	assert.True(t, totals.Total.Equal(m("100.00")))
}

func TestComputeDocument_TotalInvariantAfterRounding(t *testing.T) {
	// Awkward line values that force rounding at the document stage.
	lines := []LineResult{
		{TaxableAmount: m("33.333333"), CGST: m("1.499999"), SGST: m("1.499999")},
		{TaxableAmount: m("66.666667"), IGST: m("4.333333")},
	}

	totals, err := ComputeDocument(lines, DocumentDiscount{Percent: m("5")})
	require.NoError(t, err)

	want := totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TaxAmount)
	assert.True(t, totals.Total.Equal(want),
		"total %s != subtotal %s - discount %s + tax %s",
		totals.Total, totals.Subtotal, totals.DiscountAmount, totals.TaxAmount)
}

func TestComputeDocument_DiscountExceedsValue(t *testing.T) {
	lines := []LineResult{{TaxableAmount: m("100")}}

	_, err := ComputeDocument(lines, DocumentDiscount{Flat: m("150")})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}
