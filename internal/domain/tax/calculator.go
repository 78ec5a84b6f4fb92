// Package tax computes GST line and document totals.
//
// Rates entered by users are tax-inclusive by default; the taxable amount is
// carved out of the discounted line value. Intrastate supplies split the tax
// across CGST+SGST, interstate supplies use IGST; a line may not carry both.
// Amounts stay at full decimal precision per line and are rounded to the
// currency's minor unit only at document-total stage.
package tax

import (
	"finbooks/internal/core/apperror"
	"finbooks/internal/core/types"
)

// LineInput is one line item as entered by the caller.
type LineInput struct {
	// Quantity of units (>= 0)
	Quantity types.Money

	// Rate is the unit price as entered. Tax-inclusive unless RateExclusive.
	Rate types.Money

	// DiscountPct is the line discount percentage (0-100)
	DiscountPct types.Money

	// Tax-head rates in percent. CGST+SGST (intrastate) and IGST
	// (interstate) are mutually exclusive.
	CGSTRate types.Money
	SGSTRate types.Money
	IGSTRate types.Money

	// RateExclusive marks the rate as pre-tax; no embedded tax is carved out.
	RateExclusive bool
}

// LineResult holds the derived amounts for one line.
type LineResult struct {
	Gross          types.Money `json:"gross"`
	DiscountAmount types.Money `json:"discountAmount"`
	TaxableAmount  types.Money `json:"taxableAmount"`
	CGST           types.Money `json:"cgst"`
	SGST           types.Money `json:"sgst"`
	IGST           types.Money `json:"igst"`
	LineTotal      types.Money `json:"lineTotal"`
}

// TaxAmount is the sum of all head amounts on the line.
func (r LineResult) TaxAmount() types.Money {
	return r.CGST.Add(r.SGST).Add(r.IGST)
}

// DocumentDiscount is a document-level discount. Percent takes precedence
// over Flat when both are given; it applies to the tax-inclusive
// pre-discount total, not to the subtotal alone.
type DocumentDiscount struct {
	Percent types.Money
	Flat    types.Money
}

// DocumentTotals holds document-level aggregates, rounded to the currency's
// minor unit. Total = Subtotal - DiscountAmount + TaxAmount holds exactly.
type DocumentTotals struct {
	Subtotal       types.Money `json:"subtotal"`
	TaxAmount      types.Money `json:"taxAmount"`
	CGST           types.Money `json:"cgst"`
	SGST           types.Money `json:"sgst"`
	IGST           types.Money `json:"igst"`
	DiscountAmount types.Money `json:"discountAmount"`
	Total          types.Money `json:"total"`
}

func validateInput(in LineInput) error {
	switch {
	case in.Quantity.IsNegative():
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity").WithDetail("value", in.Quantity.String())
	case in.Rate.IsNegative():
		return apperror.NewValidation("rate cannot be negative").
			WithDetail("field", "rate").WithDetail("value", in.Rate.String())
	case in.DiscountPct.IsNegative():
		return apperror.NewValidation("discount cannot be negative").
			WithDetail("field", "discountPct").WithDetail("value", in.DiscountPct.String())
	case in.DiscountPct.GreaterThan(types.Hundred):
		return apperror.NewValidation("discount cannot exceed 100 percent").
			WithDetail("field", "discountPct").WithDetail("value", in.DiscountPct.String())
	case in.CGSTRate.IsNegative() || in.SGSTRate.IsNegative() || in.IGSTRate.IsNegative():
		return apperror.NewValidation("tax rate cannot be negative")
	}

	intrastate := in.CGSTRate.IsPositive() || in.SGSTRate.IsPositive()
	if intrastate && in.IGSTRate.IsPositive() {
		return apperror.NewValidation("line cannot carry both CGST/SGST and IGST").
			WithDetail("cgst", in.CGSTRate.String()).
			WithDetail("sgst", in.SGSTRate.String()).
			WithDetail("igst", in.IGSTRate.String())
	}

	return nil
}

// ComputeLine derives the taxable amount and tax-head split for one line.
// No rounding is applied; callers aggregate full-precision line results.
func ComputeLine(in LineInput) (LineResult, error) {
	if err := validateInput(in); err != nil {
		return LineResult{}, err
	}

	gross := in.Quantity.Mul(in.Rate)
	discount := types.Percent(gross, in.DiscountPct)
	afterDiscount := gross.Sub(discount)

	totalRate := in.CGSTRate.Add(in.SGSTRate).Add(in.IGSTRate)

	taxable := afterDiscount
	if !in.RateExclusive && totalRate.IsPositive() {
		// Carve the embedded tax out of the inclusive value:
		// taxable = value / (1 + rate/100)
		taxable = afterDiscount.Div(types.Hundred.Add(totalRate)).Mul(types.Hundred)
	}

	res := LineResult{
		Gross:          gross,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		CGST:           types.Percent(taxable, in.CGSTRate),
		SGST:           types.Percent(taxable, in.SGSTRate),
		IGST:           types.Percent(taxable, in.IGSTRate),
	}
	res.LineTotal = taxable.Add(res.TaxAmount())

	return res, nil
}

// ValidateLine checks a caller-supplied breakdown against a fresh computation.
// The caller's figures remain authoritative when they agree within epsilon;
// drift beyond epsilon is rejected rather than silently corrected.
func ValidateLine(in LineInput, supplied LineResult) error {
	computed, err := ComputeLine(in)
	if err != nil {
		return err
	}

	checks := []struct {
		field    string
		supplied types.Money
		computed types.Money
	}{
		{"taxableAmount", supplied.TaxableAmount, computed.TaxableAmount},
		{"cgst", supplied.CGST, computed.CGST},
		{"sgst", supplied.SGST, computed.SGST},
		{"igst", supplied.IGST, computed.IGST},
		{"lineTotal", supplied.LineTotal, computed.LineTotal},
	}
	for _, c := range checks {
		if !types.WithinEpsilon(c.supplied, c.computed) {
			return apperror.NewValidation("supplied tax breakdown does not match computed value").
				WithDetail("field", c.field).
				WithDetail("supplied", c.supplied.String()).
				WithDetail("computed", c.computed.String())
		}
	}

	return nil
}

// ComputeDocument aggregates line results into document totals. The document
// discount (percentage takes precedence over flat) applies to the
// tax-inclusive pre-discount total. Components are rounded to 2 decimals
// here, and Total is derived from the rounded components so that
// Total = Subtotal - DiscountAmount + TaxAmount holds exactly.
func ComputeDocument(lines []LineResult, discount DocumentDiscount) (DocumentTotals, error) {
	if discount.Percent.IsNegative() || discount.Flat.IsNegative() {
		return DocumentTotals{}, apperror.NewValidation("document discount cannot be negative")
	}
	if discount.Percent.GreaterThan(types.Hundred) {
		return DocumentTotals{}, apperror.NewValidation("document discount cannot exceed 100 percent").
			WithDetail("value", discount.Percent.String())
	}

	var subtotal, cgst, sgst, igst types.Money
	for _, line := range lines {
		subtotal = subtotal.Add(line.TaxableAmount)
		cgst = cgst.Add(line.CGST)
		sgst = sgst.Add(line.SGST)
		igst = igst.Add(line.IGST)
	}
	taxAmount := cgst.Add(sgst).Add(igst)

	preDiscount := subtotal.Add(taxAmount)
	var discountAmount types.Money
	switch {
	case discount.Percent.IsPositive():
		discountAmount = types.Percent(preDiscount, discount.Percent)
	case discount.Flat.IsPositive():
		discountAmount = discount.Flat
	}
	if discountAmount.GreaterThan(preDiscount) {
		return DocumentTotals{}, apperror.NewValidation("document discount exceeds document value").
			WithDetail("discount", discountAmount.String()).
			WithDetail("value", preDiscount.String())
	}

	totals := DocumentTotals{
		Subtotal:       types.RoundCurrency(subtotal),
		TaxAmount:      types.RoundCurrency(taxAmount),
		CGST:           types.RoundCurrency(cgst),
		SGST:           types.RoundCurrency(sgst),
		IGST:           types.RoundCurrency(igst),
		DiscountAmount: types.RoundCurrency(discountAmount),
	}
	totals.Total = totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TaxAmount)

	return totals, nil
}
