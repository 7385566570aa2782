package auth

import (
	"context"

	"github.com/plate-notify/internal/model"
)

type identityContextKey struct{}

// ContextWithIdentity attaches the authenticated identity to the context.
func ContextWithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, &id)
}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	if ctx == nil {
		return model.Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*model.Identity)
	if !ok || v == nil {
		return model.Identity{}, false
	}
	return *v, true
}
