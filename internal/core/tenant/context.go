// Package tenant provides tenant scoping for the shared relational store.
// Every entity row carries a tenant_id column and every query filters by it;
// the scope travels on the request context.
package tenant

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"finbooks/internal/core/id"
	"finbooks/internal/core/tx"
)

// Context keys for tenant-related values.
type ctxKey int

const (
	poolKey ctxKey = iota
	txManagerKey
	scopeKey
)

// Errors for context operations.
var (
	ErrNoScopeInContext = errors.New("tenant scope not found in context")
	ErrNoPoolInContext  = errors.New("database pool not found in context")
	ErrNoTxManager      = errors.New("transaction manager not found in context")
)

// Scope identifies the tenant and active branch for a request.
// Supplied by the external session resolver; the engine trusts it.
type Scope struct {
	TenantID id.ID
	BranchID id.ID
}

// --- Pool ---

// WithPool stores database pool in context.
func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, poolKey, pool)
}

// GetPool retrieves database pool from context.
func GetPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, ok := ctx.Value(poolKey).(*pgxpool.Pool)
	if !ok || pool == nil {
		return nil, ErrNoPoolInContext
	}
	return pool, nil
}

// MustGetPool retrieves database pool or panics.
// Use in places where missing pool is a programming error.
func MustGetPool(ctx context.Context) *pgxpool.Pool {
	pool, err := GetPool(ctx)
	if err != nil {
		panic("database pool not in context: " + err.Error())
	}
	return pool
}

// --- TxManager ---

// WithTxManager stores TxManager in context.
func WithTxManager(ctx context.Context, txm tx.Manager) context.Context {
	return context.WithValue(ctx, txManagerKey, txm)
}

// GetTxManager retrieves TxManager from context.
func GetTxManager(ctx context.Context) (tx.Manager, error) {
	txm, ok := ctx.Value(txManagerKey).(tx.Manager)
	if !ok || txm == nil {
		return nil, ErrNoTxManager
	}
	return txm, nil
}

// MustGetTxManager retrieves TxManager or panics.
// Use in places where missing TxManager is a programming error.
func MustGetTxManager(ctx context.Context) tx.Manager {
	txm, err := GetTxManager(ctx)
	if err != nil {
		panic("TxManager not in context: " + err.Error())
	}
	return txm
}

// --- Scope ---

// WithScope stores tenant scope in context.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey, s)
}

// GetScope retrieves tenant scope from context.
func GetScope(ctx context.Context) (Scope, error) {
	s, ok := ctx.Value(scopeKey).(Scope)
	if !ok {
		return Scope{}, ErrNoScopeInContext
	}
	return s, nil
}

// MustGetScope retrieves tenant scope or panics.
func MustGetScope(ctx context.Context) Scope {
	s, err := GetScope(ctx)
	if err != nil {
		panic("tenant scope not in context: " + err.Error())
	}
	return s
}

// TenantID returns the tenant ID from context or the nil UUID.
func TenantID(ctx context.Context) id.ID {
	if s, err := GetScope(ctx); err == nil {
		return s.TenantID
	}
	return id.Nil()
}

// BranchID returns the active branch ID from context or the nil UUID.
func BranchID(ctx context.Context) id.ID {
	if s, err := GetScope(ctx); err == nil {
		return s.BranchID
	}
	return id.Nil()
}
