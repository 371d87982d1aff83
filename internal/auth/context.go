// internal/auth/context.go
package auth

import (
	"context"
)

// ContextKey is a type-safe key for context values
type ContextKey string

// PrincipalContextKey is the key used to store the principal in the context
const PrincipalContextKey ContextKey = "auth:principal"

// PrincipalFromContext extracts the principal from the request context
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(PrincipalContextKey).(*Principal); ok {
		return p
	}
	return nil
}

// ContextWithPrincipal adds a principal to a context
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}
