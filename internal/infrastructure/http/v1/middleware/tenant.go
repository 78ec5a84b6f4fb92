package middleware

import (
	"github.com/gin-gonic/gin"

	"finbooks/internal/core/apperror"
	appctx "finbooks/internal/core/context"
	"finbooks/internal/core/id"
	"finbooks/internal/core/tenant"
	"finbooks/internal/infrastructure/storage/postgres"
)

const (
	// TenantHeader optionally pins the request to a tenant; it must match
	// the token claim when both are present.
	TenantHeader = "X-Tenant-ID"

	// BranchHeader selects the active branch for the request. Falls back
	// to the branch claim in the token.
	BranchHeader = "X-Branch-ID"
)

// TenantScope middleware resolves the tenant and branch scope for the request
// and injects the shared pool and transaction manager into context.
// Must run AFTER Auth, which validates the claims the scope is built from.
//
// All rows in the store carry tenant_id; repositories read the scope from
// context and filter every statement by it.
func TenantScope(pool *postgres.Pool) gin.HandlerFunc {
	txManager := postgres.NewTxManager(pool)

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		user := appctx.GetUser(ctx)
		if user == nil || user.TenantID == "" {
			_ = c.Error(apperror.NewUnauthorized("tenant scope requires authentication"))
			c.Abort()
			return
		}

		tenantID, err := id.Parse(user.TenantID)
		if err != nil {
			_ = c.Error(
				apperror.NewValidation("invalid tenant id in token").
					WithDetail("value", user.TenantID),
			)
			c.Abort()
			return
		}

		scope := tenant.Scope{TenantID: tenantID}

		rawBranch := c.GetHeader(BranchHeader)
		if rawBranch == "" {
			rawBranch = user.BranchID
		}
		if rawBranch != "" {
			branchID, err := id.Parse(rawBranch)
			if err != nil {
				_ = c.Error(
					apperror.NewValidation("invalid branch id").
						WithDetail("value", rawBranch),
				)
				c.Abort()
				return
			}
			scope.BranchID = branchID
		}

		ctx = tenant.WithPool(ctx, pool.Unwrap())
		ctx = tenant.WithTxManager(ctx, txManager)
		ctx = tenant.WithScope(ctx, scope)

		c.Request = c.Request.WithContext(ctx)

		c.Set("tenant_id", tenantID.String())
		c.Set("tx_manager", txManager)

		c.Next()
	}
}

// GetTxManagerFromContext retrieves TxManager from Gin context.
// Returns nil if not found. Use this in handlers.
func GetTxManagerFromContext(c *gin.Context) *postgres.TxManager {
	if v, exists := c.Get("tx_manager"); exists {
		if txm, ok := v.(*postgres.TxManager); ok {
			return txm
		}
	}
	return nil
}
