package observability

import (
	"context"

	"github.com/google/uuid"
)

type runIDKey struct{}

// NewRunID returns a fresh identifier for one CLI invocation.
func NewRunID() string {
	return uuid.NewString()
}

// ContextWithRunID attaches a run id. Outbound provider requests carry it as X-Correlation-ID.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run id, or "" if none is set.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}
