package context

import (
	"context"
)

// TraceContext identifies one request across log lines and spans.
// Propagated from the X-Trace-ID / X-Request-ID headers or generated
// at the edge.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceContextKey struct{}

// WithTrace attaches trace identifiers to the context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the trace identifiers, or nil outside a traced request.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}
