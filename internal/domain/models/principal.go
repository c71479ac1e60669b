package models

import (
	"context"

	"github.com/arman-qz/parking-system/internal/domain/types"
)

// Principal is the already-authenticated caller of a request. Handlers and
// services only ever see the resolved email and role, never credentials.
type Principal struct {
	Email string
	Role  types.AccountRole
}

func (p *Principal) IsAnonymous() bool {
	return p == nil || p.Email == ""
}

func AnonymousPrincipal() *Principal {
	return &Principal{}
}

type principalKeyStruct struct{}

var principalKey = &principalKeyStruct{}

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal set by the auth middleware,
// or nil for unauthenticated requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
