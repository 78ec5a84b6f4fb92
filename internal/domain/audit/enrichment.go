// Package audit enriches document entities with actor identity from context.
package audit

import (
	"context"

	"finbooks/internal/core/security"
)

// EnrichCreatedBy sets CreatedBy and UpdatedBy from the context actor.
// Use in BeforeCreate hooks. No-op when no actor is present (e.g. seeds).
func EnrichCreatedBy(ctx context.Context, entity interface{}) error {
	userID := security.GetUserID(ctx)
	if userID == "" {
		return nil
	}

	if e, ok := entity.(interface {
		SetCreatedBy(string)
		SetUpdatedBy(string)
	}); ok {
		e.SetCreatedBy(userID)
		e.SetUpdatedBy(userID)
	}

	return nil
}

// EnrichUpdatedBy sets only UpdatedBy from the context actor.
// Use in BeforeUpdate hooks.
func EnrichUpdatedBy(ctx context.Context, entity interface{}) error {
	userID := security.GetUserID(ctx)
	if userID == "" {
		return nil
	}

	if e, ok := entity.(interface{ SetUpdatedBy(string) }); ok {
		e.SetUpdatedBy(userID)
	}

	return nil
}
