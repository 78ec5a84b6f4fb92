package security

import "context"

// Actor identifies the authenticated principal performing a request.
// The HTTP auth middleware populates it from validated JWT claims;
// background jobs may set a synthetic actor (e.g. "system").
type Actor struct {
	UserID string
	Email  string
}

type actorKey struct{}

// WithActor stores the actor in context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor retrieves the actor from context.
// Returns a zero Actor if none was set.
func GetActor(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return Actor{}
}

// GetUserID is a shortcut for GetActor(ctx).UserID.
func GetUserID(ctx context.Context) string {
	return GetActor(ctx).UserID
}
