// Package ctxkeys holds request-scoped values with unexported context keys.
package ctxkeys

import (
	"context"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated API caller extracted from a bearer token.
type Identity struct {
	UserID int64
	Admin  bool
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller identity, or nil for unauthenticated
// requests.
func IdentityFrom(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}
