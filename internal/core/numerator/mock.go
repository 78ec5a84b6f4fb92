// Package numerator provides domain contracts for document auto-numbering.
package numerator

import (
	"context"
	"sync"
	"time"

	"finbooks/internal/core/fiscal"
)

// MemoryAllocator is an in-memory Allocator for unit tests. It mirrors the
// database implementation's semantics (lazy row creation, yearly reset fused
// with the draw, pre-increment assignment) behind a mutex instead of a
// conditional update.
type MemoryAllocator struct {
	calendar fiscal.Calendar

	mu   sync.Mutex
	rows map[string]*memoryRow
}

type memoryRow struct {
	counter   int64
	fiscalTag string
}

// NewMemoryAllocator creates an in-memory allocator on the April calendar.
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{
		calendar: fiscal.Default(),
		rows:     make(map[string]*memoryRow),
	}
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MemoryAllocator)(nil)

// NextNumber implements Allocator.
func (m *MemoryAllocator) NextNumber(ctx context.Context, key Key, cfg Config, branchPrefix string, asOf time.Time) (Draw, error) {
	year := m.calendar.YearOf(asOf)

	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[key.String()]
	if !ok {
		row = &memoryRow{counter: 1, fiscalTag: year.Tag()}
		m.rows[key.String()] = row
	}

	if cfg.Reset == ResetYearly && row.fiscalTag != year.Tag() {
		row.counter = 1
		row.fiscalTag = year.Tag()
	}

	value := row.counter
	row.counter = value + 1

	// Sequences that never reset carry no year segment in the number.
	short := year.Short()
	if cfg.Reset != ResetYearly {
		short = ""
	}

	return Draw{
		Value:     value,
		Number:    Format(cfg, branchPrefix, value, short),
		FiscalTag: row.fiscalTag,
		At:        asOf,
	}, nil
}

// Release implements Allocator.
func (m *MemoryAllocator) Release(ctx context.Context, key Key, d Draw) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[key.String()]
	if !ok {
		return nil
	}
	// Roll back only while no later draw has happened.
	if row.fiscalTag == d.FiscalTag && row.counter == d.Value+1 {
		row.counter = d.Value
	}
	return nil
}

// SetNext implements Allocator.
func (m *MemoryAllocator) SetNext(ctx context.Context, key Key, cfg Config, asOf time.Time, value int64) error {
	year := m.calendar.YearOf(asOf)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[key.String()] = &memoryRow{counter: value, fiscalTag: year.Tag()}
	return nil
}

// Peek returns the stored counter for a key (white-box test helper).
func (m *MemoryAllocator) Peek(key Key) (int64, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row, ok := m.rows[key.String()]; ok {
		return row.counter, row.fiscalTag
	}
	return 0, ""
}
