// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors. Intermediate
// calculations keep full precision; rounding to the currency's minor
// unit happens only at document-total stage.
type Money = decimal.Decimal

// Epsilon is the tolerance for balance comparisons (0.01 currency unit).
// It absorbs rounding drift across many lines.
var Epsilon = decimal.New(1, -2)

// Hundred is the divisor for percentage math.
var Hundred = decimal.NewFromInt(100)

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundCurrency rounds to the currency's minor-unit precision (2 decimals).
// Call at document-total stage only, never per line.
func RoundCurrency(m Money) Money {
	return m.Round(2)
}

// WithinEpsilon reports whether two amounts differ by at most Epsilon.
func WithinEpsilon(a, b Money) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// Percent returns amount * pct / 100 at full precision.
func Percent(amount, pct Money) Money {
	return amount.Mul(pct).Div(Hundred)
}
