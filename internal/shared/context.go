package shared

import (
	"context"

	"github.com/google/uuid"
)

// Role names carried in access tokens.
const (
	RoleAdmin = "admin"
	RoleB2B   = "b2b"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID     uuid.UUID
	Email      string
	Role       string
	CustomerID *uuid.UUID
	TokenID    string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ActorID returns the principal's user id as a string, or "system".
func ActorID(ctx context.Context) string {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.UserID.String()
	}
	return "system"
}
