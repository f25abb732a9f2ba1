package auth

import "context"

type principalKey struct{}

// WithPrincipal attaches the authenticated account id to ctx.
func WithPrincipal(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, principalKey{}, id)
}

// PrincipalFrom returns the account id attached by the auth guard.
func PrincipalFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(principalKey{}).(int64)
	return id, ok
}
