// Package numerator provides the PostgreSQL implementation of document
// auto-numbering. It implements core/numerator.Allocator with conditional
// updates (compare-and-set on the stored counter), never blind increments.
package numerator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/fiscal"
	corenumerator "finbooks/internal/core/numerator"
	"finbooks/internal/infrastructure/storage/postgres"
	"finbooks/pkg/logger"
)

const sequencesTable = "doc_sequences"

// maxDrawAttempts bounds the CAS retry loop. A drawer that loses the race
// on every attempt returns SEQUENCE_CONFLICT to the caller.
const maxDrawAttempts = 3

// Ensure compile-time interface compliance.
var _ corenumerator.Allocator = (*Service)(nil)

// Service draws document numbers from per-(tenant, branch, type) sequence
// rows. Each draw is one conditional UPDATE: it only advances the counter
// if nobody else advanced it first, so two drawers can never both receive
// the same value. The yearly reset is fused into the same UPDATE.
type Service struct {
	calendar fiscal.Calendar
}

// New creates a new allocator on the given fiscal calendar.
func New(calendar fiscal.Calendar) *Service {
	return &Service{calendar: calendar}
}

// NextNumber implements corenumerator.Allocator.
func (s *Service) NextNumber(ctx context.Context, key corenumerator.Key, cfg corenumerator.Config, branchPrefix string, asOf time.Time) (corenumerator.Draw, error) {
	year := s.calendar.YearOf(asOf)

	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		value, fiscalTag, err := s.tryDraw(ctx, key, cfg, year)
		if err != nil {
			return corenumerator.Draw{}, err
		}
		if value == 0 {
			// Lost the race; another drawer advanced the counter first.
			continue
		}

		short := year.Short()
		if cfg.Reset != corenumerator.ResetYearly {
			short = ""
		}

		return corenumerator.Draw{
			Value:     value,
			Number:    corenumerator.Format(cfg, branchPrefix, value, short),
			FiscalTag: fiscalTag,
			At:        asOf,
		}, nil
	}

	return corenumerator.Draw{}, apperror.NewSequenceConflict(key.String(), maxDrawAttempts)
}

// tryDraw performs one CAS attempt. Returns value=0 when the attempt lost
// the race and should be retried.
func (s *Service) tryDraw(ctx context.Context, key corenumerator.Key, cfg corenumerator.Config, year fiscal.Year) (int64, string, error) {
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)

	// Read the current counter; create the row lazily on first use.
	var counter int64
	var fiscalTag string
	readSQL := `
		SELECT counter, fiscal_tag FROM ` + sequencesTable + `
		WHERE tenant_id = $1 AND branch_id = $2 AND document_type = $3`
	err := querier.QueryRow(ctx, readSQL, key.TenantID, key.BranchID, key.DocumentType).
		Scan(&counter, &fiscalTag)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		created, cErr := s.insertRow(ctx, key, year.Tag())
		if cErr != nil {
			return 0, "", cErr
		}
		if created {
			return 1, year.Tag(), nil
		}
		// Someone else inserted concurrently; retry against their row.
		return 0, "", nil
	case err != nil:
		return 0, "", fmt.Errorf("read sequence: %w", err)
	}

	resetDue := cfg.Reset == corenumerator.ResetYearly && fiscalTag != year.Tag()

	if resetDue {
		// Fuse the reset with the draw: the row moves atomically from its
		// old state to (counter=2, new tag) and the drawer receives 1. A
		// crash in between can never hand out 1 twice.
		resetSQL := `
			UPDATE ` + sequencesTable + `
			SET counter = 2, fiscal_tag = $5, updated_at = NOW()
			WHERE tenant_id = $1 AND branch_id = $2 AND document_type = $3
			  AND counter = $4 AND fiscal_tag = $6`
		tag, err := querier.Exec(ctx, resetSQL,
			key.TenantID, key.BranchID, key.DocumentType, counter, year.Tag(), fiscalTag)
		if err != nil {
			return 0, "", fmt.Errorf("reset sequence: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return 0, "", nil
		}
		return 1, year.Tag(), nil
	}

	// Plain draw: advance only if the counter still matches what we read.
	drawSQL := `
		UPDATE ` + sequencesTable + `
		SET counter = $4 + 1, updated_at = NOW()
		WHERE tenant_id = $1 AND branch_id = $2 AND document_type = $3
		  AND counter = $4 AND fiscal_tag = $5`
	tag, err := querier.Exec(ctx, drawSQL,
		key.TenantID, key.BranchID, key.DocumentType, counter, fiscalTag)
	if err != nil {
		return 0, "", fmt.Errorf("advance sequence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, "", nil
	}
	return counter, fiscalTag, nil
}

// insertRow creates the sequence row with counter already advanced past the
// first value. Returns created=false when a concurrent insert won.
func (s *Service) insertRow(ctx context.Context, key corenumerator.Key, fiscalTag string) (bool, error) {
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)

	insertSQL := `
		INSERT INTO ` + sequencesTable + ` (tenant_id, branch_id, document_type, counter, fiscal_tag, updated_at)
		VALUES ($1, $2, $3, 2, $4, NOW())
		ON CONFLICT (tenant_id, branch_id, document_type) DO NOTHING`
	tag, err := querier.Exec(ctx, insertSQL, key.TenantID, key.BranchID, key.DocumentType, fiscalTag)
	if err != nil {
		return false, fmt.Errorf("create sequence: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Release implements corenumerator.Allocator. The decrement is conditional:
// it only applies while this draw is still the newest one, so a released
// value is handed to the next drawer and no duplicate can occur. If a later
// draw already happened the release is a no-op and a gap is accepted.
func (s *Service) Release(ctx context.Context, key corenumerator.Key, d corenumerator.Draw) error {
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)

	releaseSQL := `
		UPDATE ` + sequencesTable + `
		SET counter = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND branch_id = $2 AND document_type = $3
		  AND counter = $4 + 1 AND fiscal_tag = $5`
	tag, err := querier.Exec(ctx, releaseSQL,
		key.TenantID, key.BranchID, key.DocumentType, d.Value, d.FiscalTag)
	if err != nil {
		return fmt.Errorf("release sequence: %w", err)
	}

	if tag.RowsAffected() == 0 {
		logger.Debug(ctx, "sequence release skipped, later draw exists",
			"key", key.String(), "value", d.Value)
	}

	return nil
}

// SetNext implements corenumerator.Allocator (migration/import use).
func (s *Service) SetNext(ctx context.Context, key corenumerator.Key, cfg corenumerator.Config, asOf time.Time, value int64) error {
	year := s.calendar.YearOf(asOf)
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)

	sql := `
		INSERT INTO ` + sequencesTable + ` (tenant_id, branch_id, document_type, counter, fiscal_tag, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (tenant_id, branch_id, document_type)
		DO UPDATE SET counter = EXCLUDED.counter, fiscal_tag = EXCLUDED.fiscal_tag, updated_at = NOW()`
	if _, err := querier.Exec(ctx, sql, key.TenantID, key.BranchID, key.DocumentType, value, year.Tag()); err != nil {
		return fmt.Errorf("set sequence: %w", err)
	}

	return nil
}
