// Package auth carries the signed-in identity through a request.
//
// A Principal is built by the bearer middleware for each request from a verified
// access token and the member's current profile. Nothing holds it globally: it
// lives in the request context and ends with the request.
package auth

import (
	"context"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
)

// Principal is the identity behind a request.
type Principal struct {
	UserID    string
	SessionID string
	Role      identity.Role
	FullName  string
	Email     string
}

// CanVerify reports whether p may confirm attendance. A nil principal may not.
func (p *Principal) CanVerify() bool { return p != nil && p.Role.CanVerify() }

// IsAdmin reports whether p holds the admin role.
func (p *Principal) IsAdmin() bool { return p != nil && p.Role.IsAdmin() }

type principalKey struct{}

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the request's principal, or nil when unauthenticated.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
