package auth

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// Token is the authenticated identity triple asserted by the external
// identity provider. The core trusts it and performs no credential
// verification of its own.
type Token struct {
	Sub      types.UserID
	Role     types.Role
	TenantID types.TenantID
	Email    string
	Name     string
}

type ctxTokenKey struct{}

// ContextWithToken stores the token in the context.
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext retrieves the token from the context.
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	if !ok || token == nil {
		return nil, goerr.New("no authentication token in context")
	}
	return token, nil
}

// NewAnonymousUser returns the development-mode identity used when
// authentication is disabled.
func NewAnonymousUser() *Token {
	return &Token{
		Sub:      "anonymous",
		Role:     types.RoleSuperAdmin,
		TenantID: "local",
		Name:     "Anonymous",
	}
}

// EffectiveTenant resolves the tenant an operation acts against.
// Without a selection the actor operates in its home tenant.
// Cross-tenant roles (and super_admin, which is tenant-unbound) may
// select any tenant explicitly; everyone else may only name their home
// tenant. Selection never defaults to "all tenants".
func (t *Token) EffectiveTenant(selected types.TenantID) (types.TenantID, error) {
	if selected == "" || selected == t.TenantID {
		return t.TenantID, nil
	}
	if !t.Role.IsCrossTenant() {
		return "", goerr.New("role may not select another tenant",
			goerr.V("role", t.Role), goerr.V("selected", selected))
	}
	return selected, nil
}
