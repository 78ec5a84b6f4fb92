// Package credit gates new sales exposure against counterparty credit limits.
package credit

import (
	"context"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain/catalogs/counterparty"
	cpledger "finbooks/internal/domain/registers/counterparty"
	"finbooks/pkg/logger"
)

// Band describes how much of the credit limit is used, for screens and
// reports.
type Band string

const (
	// BandUnlimited means no limit is configured.
	BandUnlimited Band = "unlimited"
	// BandAvailable means less than 80% of the limit is used.
	BandAvailable Band = "available"
	// BandLimited means 80-100% of the limit is used.
	BandLimited Band = "limited"
	// BandExceeded means the outstanding balance is over the limit.
	BandExceeded Band = "exceeded"
)

var bandThreshold = types.MustMoney("0.8")

// Status is the credit position of one counterparty.
type Status struct {
	CounterpartyID id.ID       `json:"counterpartyId"`
	CreditLimit    types.Money `json:"creditLimit"`
	Outstanding    types.Money `json:"outstanding"`
	Available      types.Money `json:"available"`
	Band           Band        `json:"band"`
	Override       bool        `json:"override"`
}

// BalanceSource resolves a counterparty's outstanding balance when the
// running ledger has no entries yet. The document store implements it by
// summing unpaid issued invoices.
type BalanceSource interface {
	UnpaidReceivableTotal(ctx context.Context, counterpartyID id.ID) (types.Money, error)
}

// Controller evaluates credit exposure before sales documents post.
type Controller struct {
	counterparties counterparty.Repository
	register       *cpledger.Service
	fallback       BalanceSource
}

// NewController creates a credit controller. fallback may be nil; the
// opening balance alone is then used when the ledger is empty.
func NewController(counterparties counterparty.Repository, register *cpledger.Service, fallback BalanceSource) *Controller {
	return &Controller{
		counterparties: counterparties,
		register:       register,
		fallback:       fallback,
	}
}

// Outstanding returns the counterparty's current owed balance: the latest
// running-ledger balance, or opening balance plus unpaid invoices when no
// ledger entry exists yet.
func (c *Controller) Outstanding(ctx context.Context, cp *counterparty.Counterparty) (types.Money, error) {
	balance, ok, err := c.register.Balance(ctx, cp.ID)
	if err != nil {
		return types.Zero(), err
	}
	if ok {
		return balance, nil
	}

	outstanding := cp.OpeningBalance
	if c.fallback != nil {
		unpaid, err := c.fallback.UnpaidReceivableTotal(ctx, cp.ID)
		if err != nil {
			return types.Zero(), err
		}
		outstanding = outstanding.Add(unpaid)
	}
	return outstanding, nil
}

// CheckExposure decides whether the counterparty may take on documentTotal
// of new receivable exposure. override skips the gate explicitly;
// a per-counterparty CreditOverride skips it permanently.
func (c *Controller) CheckExposure(ctx context.Context, counterpartyID id.ID, documentTotal types.Money, override bool) error {
	cp, err := c.counterparties.GetByID(ctx, counterpartyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("counterparty", counterpartyID.String())
		}
		return err
	}

	if cp.CreditLimit.IsZero() {
		return nil
	}

	outstanding, err := c.Outstanding(ctx, cp)
	if err != nil {
		return err
	}

	if outstanding.Add(documentTotal).LessThanOrEqual(cp.CreditLimit) {
		return nil
	}

	if cp.CreditOverride || override {
		logger.Warn(ctx, "credit limit exceeded, override applied",
			"counterparty_id", cp.ID,
			"outstanding", outstanding,
			"document_total", documentTotal,
			"credit_limit", cp.CreditLimit,
		)
		return nil
	}

	return apperror.NewCreditLimitExceeded(
		cp.ID.String(),
		outstanding.String(),
		documentTotal.String(),
		cp.CreditLimit.String(),
	)
}

// StatusFor reports the counterparty's credit position.
func (c *Controller) StatusFor(ctx context.Context, counterpartyID id.ID) (*Status, error) {
	cp, err := c.counterparties.GetByID(ctx, counterpartyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("counterparty", counterpartyID.String())
		}
		return nil, err
	}

	outstanding, err := c.Outstanding(ctx, cp)
	if err != nil {
		return nil, err
	}

	st := &Status{
		CounterpartyID: cp.ID,
		CreditLimit:    cp.CreditLimit,
		Outstanding:    outstanding,
		Band:           classify(outstanding, cp.CreditLimit),
		Override:       cp.CreditOverride,
	}
	if !cp.CreditLimit.IsZero() {
		st.Available = cp.CreditLimit.Sub(outstanding)
	}
	return st, nil
}

func classify(outstanding, limit types.Money) Band {
	switch {
	case limit.IsZero():
		return BandUnlimited
	case outstanding.GreaterThan(limit):
		return BandExceeded
	case outstanding.GreaterThanOrEqual(limit.Mul(bandThreshold)):
		return BandLimited
	default:
		return BandAvailable
	}
}
