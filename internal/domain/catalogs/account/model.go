// Package account provides the chart-of-accounts catalog.
//
// Every journal line references an account. The account type fixes the
// normal balance side: asset, expense and COGS accounts grow on debit;
// liability, equity and income accounts grow on credit.
package account

import (
	"context"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/entity"
	"finbooks/internal/core/types"
)

// Type classifies an account for reporting and balance arithmetic.
type Type string

const (
	TypeAsset     Type = "asset"
	TypeLiability Type = "liability"
	TypeEquity    Type = "equity"
	TypeIncome    Type = "income"
	TypeExpense   Type = "expense"
	TypeCOGS      Type = "cogs"
)

// Subtype refines balance-sheet placement.
type Subtype string

const (
	SubtypeCurrent Subtype = "current"
	SubtypeFixed   Subtype = "fixed"
	SubtypeOther   Subtype = "other"
)

// Side is a journal-entry side.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

// Account is one ledger account in the chart of accounts.
type Account struct {
	entity.Catalog

	Type    Type    `db:"account_type" json:"accountType"`
	Subtype Subtype `db:"account_subtype" json:"accountSubtype"`

	// IsSystem marks accounts the engine posts to automatically
	// (receivables, payables, tax heads, customer advances). System
	// accounts cannot be deleted.
	IsSystem bool `db:"is_system" json:"isSystem"`

	// Balance is the running signed balance, maintained atomically by
	// the ledger poster. Positive on the account's normal side.
	Balance types.Money `db:"balance" json:"balance"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewAccount creates a new Account with required fields.
func NewAccount(code, name string, accType Type) *Account {
	return &Account{
		Catalog: entity.NewCatalog(code, name),
		Type:    accType,
		Subtype: SubtypeOther,
	}
}

// Validate implements entity.Validatable interface.
func (a *Account) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidType(a.Type) {
		return apperror.NewValidation("invalid account type").
			WithDetail("field", "accountType").
			WithDetail("value", string(a.Type))
	}
	if a.Subtype != "" && !isValidSubtype(a.Subtype) {
		return apperror.NewValidation("invalid account subtype").
			WithDetail("field", "accountSubtype").
			WithDetail("value", string(a.Subtype))
	}

	return nil
}

// NormalSide returns the side on which this account's balance grows.
func (a *Account) NormalSide() Side {
	return NormalSide(a.Type)
}

// NormalSide returns the growing side for an account type.
func NormalSide(t Type) Side {
	switch t {
	case TypeAsset, TypeExpense, TypeCOGS:
		return Debit
	default:
		return Credit
	}
}

// BalanceDelta converts a debit and credit amount into the signed delta
// applied to the running balance, per the account's normal side.
func (a *Account) BalanceDelta(debit, credit types.Money) types.Money {
	if a.NormalSide() == Debit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// OnBalanceSheet reports whether the account type appears on the balance
// sheet (vs the income statement).
func (t Type) OnBalanceSheet() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity:
		return true
	}
	return false
}

func isValidType(t Type) bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense, TypeCOGS:
		return true
	}
	return false
}

func isValidSubtype(s Subtype) bool {
	switch s {
	case SubtypeCurrent, SubtypeFixed, SubtypeOther:
		return true
	}
	return false
}
