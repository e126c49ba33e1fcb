package llm

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "llm_request_id"

// WithRequestID returns a context carrying id for model-call logging.
// An empty id generates a new one.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request ID attached to ctx, or "" if none.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
