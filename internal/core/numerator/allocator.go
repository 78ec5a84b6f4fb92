// Package numerator provides domain contracts for document auto-numbering.
// Implementations live in infrastructure layer.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"finbooks/internal/core/apperror"
)

// Allocator assigns gapless-best-effort, duplicate-free document numbers.
// This is the domain contract - the PostgreSQL implementation lives in
// infrastructure layer and uses conditional updates, never blind increments.
type Allocator interface {
	// NextNumber draws the next counter value for the key and renders it.
	// The counter row is created lazily on first use. A yearly-reset
	// sequence whose stored financial year differs from asOf's is reset
	// in the same conditional update as the draw.
	//
	// Concurrent drawers never both receive the same value; a drawer that
	// loses the race on every retry gets a SEQUENCE_CONFLICT error.
	NextNumber(ctx context.Context, key Key, cfg Config, branchPrefix string, asOf time.Time) (Draw, error)

	// Release attempts a compensating decrement after the caller failed to
	// persist the document that consumed the draw. Best-effort: succeeds
	// only while no later draw has happened; a gap is accepted otherwise.
	Release(ctx context.Context, key Key, d Draw) error

	// SetNext overrides the next counter value (migration/import use).
	SetNext(ctx context.Context, key Key, cfg Config, asOf time.Time, value int64) error
}

// Format renders a document number from its parts.
// Pattern: BRANCH-PREFIXNNNN[suffix]/YY (e.g. "MUM-INV-0007/24").
// With an empty branch prefix the branch segment is omitted.
func Format(cfg Config, branchPrefix string, value int64, shortYear string) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 4
	}

	var b strings.Builder
	if branchPrefix != "" {
		b.WriteString(branchPrefix)
		b.WriteString("-")
	}
	b.WriteString(cfg.Prefix)
	fmt.Fprintf(&b, "%0*d", padWidth, value)
	b.WriteString(cfg.Suffix)
	if shortYear != "" {
		b.WriteString("/")
		b.WriteString(shortYear)
	}
	return b.String()
}

// Components are the parts recovered from a rendered document number.
type Components struct {
	BranchPrefix string
	Prefix       string
	Value        int64
	ShortYear    string
}

// Parse recovers the (branch prefix, type prefix, counter, year) tuple from a
// rendered number. Formatting then parsing round-trips: the recovered tuple
// re-renders to the same string.
func Parse(rendered string) (Components, error) {
	var c Components

	body := rendered
	if i := strings.LastIndex(rendered, "/"); i >= 0 {
		c.ShortYear = rendered[i+1:]
		body = rendered[:i]
	}

	// Trailing digits are the counter; anything after them is a suffix,
	// which Parse does not preserve separately.
	end := len(body)
	for end > 0 && body[end-1] >= '0' && body[end-1] <= '9' {
		end--
	}
	digits := body[end:]
	if digits == "" {
		return c, apperror.NewValidation("document number has no counter").
			WithDetail("number", rendered)
	}
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return c, apperror.NewValidation("document number counter is not numeric").
			WithDetail("number", rendered)
	}
	c.Value = value

	head := body[:end]
	parts := strings.SplitN(head, "-", 2)
	if len(parts) == 2 && parts[1] != "" {
		// "MUM-INV-0007" -> branch "MUM", prefix "INV-"
		c.BranchPrefix = parts[0]
		c.Prefix = parts[1]
	} else {
		// "INV-0007" with no branch segment
		c.Prefix = head
	}

	return c, nil
}
