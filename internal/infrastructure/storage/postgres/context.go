package postgres

import (
	"context"
	"fmt"

	"finbooks/internal/core/tenant"
)

// MustGetTxManager recovers the concrete *TxManager that the tenant
// middleware (or a background job) put in the context. Repositories use
// it for GetQuerier/GetTx; domain code depends on core/tx.Manager only.
func MustGetTxManager(ctx context.Context) *TxManager {
	txm := tenant.MustGetTxManager(ctx)
	postgresTxm, ok := txm.(*TxManager)
	if !ok || postgresTxm == nil {
		panic(fmt.Sprintf("TxManager in context has unexpected type: %T", txm))
	}
	return postgresTxm
}
