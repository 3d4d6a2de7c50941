package auth

import (
	"context"
)

// Identity is the resolved caller context supplied by the auth collaborator.
// The service trusts it as-is; session management lives elsewhere.
type Identity struct {
	EmployeeID int64
	IsAdmin    bool
	IsManager  bool
}

type contextKey struct{}

// WithIdentity returns a context carrying the caller identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the caller identity, if present.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
