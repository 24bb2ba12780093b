package observability

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestRunID_ContextRoundTrip(t *testing.T) {
	id := NewRunID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewRunID() = %q, not a UUID: %v", id, err)
	}
	ctx := ContextWithRunID(context.Background(), id)
	if got := RunIDFromContext(ctx); got != id {
		t.Errorf("RunIDFromContext() = %q, want %q", got, id)
	}
	if got := RunIDFromContext(context.Background()); got != "" {
		t.Errorf("RunIDFromContext(empty) = %q, want empty", got)
	}
}
