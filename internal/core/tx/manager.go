// Package tx defines the transaction boundary contract used by domain
// services. The concrete pgx implementation lives in
// infrastructure/storage/postgres; keeping the interface here lets
// services stay free of driver imports.
package tx

import (
	"context"
)

// Manager runs a function inside a database transaction.
//
// Every multi-step engine operation (issue a document, record a
// payment, post a journal entry) goes through RunInTransaction so that
// number draws, register movements and balance updates commit or roll
// back as one unit. Nested calls join the transaction already carried
// in the context.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
