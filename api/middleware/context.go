package middleware

import (
	"context"

	pkgAuth "github.com/angelmondragon/detailshop-backend/pkg/auth"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

// PrincipalFromContext returns the caller resolved by LoadPrincipal, or nil for
// anonymous requests.
func PrincipalFromContext(ctx context.Context) *pkgAuth.Principal {
	if ctx == nil {
		return nil
	}
	if p, ok := ctx.Value(ctxPrincipal).(*pkgAuth.Principal); ok {
		return p
	}
	return nil
}

// WithPrincipal injects the principal into the context.
func WithPrincipal(ctx context.Context, principal *pkgAuth.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, principal)
}

func subjectFromContext(ctx context.Context) string {
	return PrincipalFromContext(ctx).Subject()
}
