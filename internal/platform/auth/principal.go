package auth

import "context"

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated identity attached to one in-flight request.
// It is built from validated token claims only; no store lookup happens per
// request, so a role change takes effect when the token expires.
type Principal struct {
	Subject string
	Role    Role
}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the request principal, or nil on public routes.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
