package auth_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

func TestTokenContext(t *testing.T) {
	token := &auth.Token{Sub: "u-1", Role: types.RoleEndUser, TenantID: "acme"}
	ctx := auth.ContextWithToken(context.Background(), token)

	got, err := auth.TokenFromContext(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Sub).Equal(types.UserID("u-1"))

	_, err = auth.TokenFromContext(context.Background())
	gt.Error(t, err)
}

func TestEffectiveTenant(t *testing.T) {
	endUser := &auth.Token{Sub: "u-1", Role: types.RoleEndUser, TenantID: "acme"}

	tenant, err := endUser.EffectiveTenant("")
	gt.NoError(t, err)
	gt.Value(t, tenant).Equal(types.TenantID("acme"))

	tenant, err = endUser.EffectiveTenant("acme")
	gt.NoError(t, err)
	gt.Value(t, tenant).Equal(types.TenantID("acme"))

	_, err = endUser.EffectiveTenant("globex")
	gt.Error(t, err)

	analyst := &auth.Token{Sub: "u-2", Role: types.RoleSecurityAnalyst, TenantID: "msp"}
	tenant, err = analyst.EffectiveTenant("globex")
	gt.NoError(t, err)
	gt.Value(t, tenant).Equal(types.TenantID("globex"))

	root := &auth.Token{Sub: "u-3", Role: types.RoleSuperAdmin, TenantID: "hq"}
	tenant, err = root.EffectiveTenant("globex")
	gt.NoError(t, err)
	gt.Value(t, tenant).Equal(types.TenantID("globex"))
}
