// Package requestid carries the per-request correlation ID through a context.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header holding the request correlation ID.
const Header = "X-Request-ID"

type contextKey struct{}

// New generates a fresh request ID.
func New() string {
	return uuid.NewString()
}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the request ID stored in ctx, or "" if none.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
