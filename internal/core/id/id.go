// Package id generates identifiers for engine entities. UUIDv7 is
// time-ordered, so document and ledger rows cluster by creation time in
// the B-tree without a separate created_at sort index.
package id

import (
	"github.com/google/uuid"
)

// ID identifies any engine entity: documents, catalog rows, journal
// entries, register movements.
type ID = uuid.UUID

// New draws a UUIDv7. The v4 fallback only triggers if the entropy
// source fails.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Parse converts a string to an ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse panics on malformed input; for constants and tests only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil is the zero ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether id is the zero ID.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
