package usecase

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// NoAuthnUseCase bypasses token verification and acts as a fixed user
// (for development and testing).
type NoAuthnUseCase struct {
	sub      types.UserID
	role     types.Role
	tenantID types.TenantID
}

// NewNoAuthnUseCase creates a NoAuthnUseCase acting as the specified
// user.
func NewNoAuthnUseCase(sub types.UserID, role types.Role, tenantID types.TenantID) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		sub:      sub,
		role:     role,
		tenantID: tenantID,
	}
}

// ValidateToken always returns the configured identity, ignoring the
// presented token.
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, raw string) (*auth.Token, error) {
	return &auth.Token{
		Sub:      uc.sub,
		Role:     uc.role,
		TenantID: uc.tenantID,
		Name:     string(uc.sub),
	}, nil
}

// IsNoAuthn returns true for NoAuthnUseCase.
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
