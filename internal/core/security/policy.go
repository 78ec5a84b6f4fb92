// Package security provides posting-period policies.
package security

import (
	"context"
	"time"

	"finbooks/internal/core/apperror"
)

// PostingPolicy defines rules for posting into accounting periods.
// Different tenants may have different policies (strict vs flexible).
type PostingPolicy interface {
	// CanPost checks if a journal entry or document can be posted with given date
	CanPost(ctx context.Context, docDate time.Time) error

	// CanModify checks if a posted document can be modified
	CanModify(ctx context.Context, docDate time.Time) error

	// CanUnpost checks if a document can be unposted or cancelled
	CanUnpost(ctx context.Context, docDate time.Time) error

	// GetClosedPeriod returns the date until which the period is closed
	GetClosedPeriod(ctx context.Context) time.Time
}

// StrictPolicy forbids any changes to a closed period.
// Used for regulatory compliance.
type StrictPolicy struct {
	closedUntil time.Time
}

// NewStrictPolicy creates policy that forbids changes before closedUntil.
func NewStrictPolicy(closedUntil time.Time) *StrictPolicy {
	return &StrictPolicy{closedUntil: closedUntil}
}

func (p *StrictPolicy) CanPost(ctx context.Context, docDate time.Time) error {
	if docDate.Before(p.closedUntil) {
		return apperror.NewPeriodClosed(p.closedUntil.Format("2006-01"))
	}
	return nil
}

func (p *StrictPolicy) CanModify(ctx context.Context, docDate time.Time) error {
	return p.CanPost(ctx, docDate)
}

func (p *StrictPolicy) CanUnpost(ctx context.Context, docDate time.Time) error {
	return p.CanPost(ctx, docDate)
}

func (p *StrictPolicy) GetClosedPeriod(ctx context.Context) time.Time {
	return p.closedUntil
}

// OpenPolicy allows all operations (for development/testing).
type OpenPolicy struct{}

func (OpenPolicy) CanPost(ctx context.Context, docDate time.Time) error   { return nil }
func (OpenPolicy) CanModify(ctx context.Context, docDate time.Time) error { return nil }
func (OpenPolicy) CanUnpost(ctx context.Context, docDate time.Time) error { return nil }
func (OpenPolicy) GetClosedPeriod(ctx context.Context) time.Time          { return time.Time{} }
