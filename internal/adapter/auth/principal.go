// Package auth carries the authenticated caller through a request and checks
// identity claims against it.
package auth

import (
	"context"
	"slices"

	"p2plending/internal/domain/loan"
)

type principalKey struct{}

// WithPrincipal returns ctx carrying the authenticated identity.
func WithPrincipal(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, principalKey{}, identity)
}

func Principal(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	return id, ok && id != ""
}

// ContextAuthorizer grants an identity only to the caller authenticated as
// exactly that identity. Reserved identities, such as the custody account,
// are never granted to a caller.
type ContextAuthorizer struct {
	Reserved []string
}

func (a ContextAuthorizer) RequireAuth(ctx context.Context, identity string) error {
	p, ok := Principal(ctx)
	if !ok || identity == "" || p != identity || slices.Contains(a.Reserved, identity) {
		return loan.ErrNotAuthorized
	}
	return nil
}
