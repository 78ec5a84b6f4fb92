// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext contains authenticated caller information supplied by the
// external session resolver. The engine trusts these values and scopes
// every read and write by TenantID.
type UserContext struct {
	UserID    string
	TenantID  string
	BranchID  string
	Email     string
	Roles     []string
	IsAdmin   bool
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetTenantID returns tenant ID from context or empty string.
func GetTenantID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.TenantID
	}
	return ""
}

// GetBranchID returns the active branch ID from context or empty string.
func GetBranchID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.BranchID
	}
	return ""
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GetUserContext is an alias for GetUser for backwards compatibility.
func GetUserContext(ctx context.Context) *UserContext {
	return GetUser(ctx)
}
