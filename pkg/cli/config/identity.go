package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/usecase"
	"github.com/secmon-lab/briareus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Identity holds CLI flags for token verification against the external
// identity provider.
type Identity struct {
	jwksURL   string
	jwtSecret string
	noAuth    string
}

// Flags returns CLI flags for identity configuration
func (i *Identity) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwks-url",
			Usage:       "JWKS endpoint of the identity provider",
			Category:    "Authentication",
			Sources:     cli.EnvVars("BRIAREUS_JWKS_URL"),
			Destination: &i.jwksURL,
		},
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "Shared HS256 secret for token verification (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("BRIAREUS_JWT_SECRET"),
			Destination: &i.jwtSecret,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run as a fixed identity (development only). Format: <user>:<role>:<tenant>, e.g. --no-auth=alice:super_admin:acme",
			Category:    "Authentication",
			Sources:     cli.EnvVars("BRIAREUS_NO_AUTH"),
			Destination: &i.noAuth,
		},
	}
}

// IsNoAuthMode reports whether authentication is disabled.
func (i *Identity) IsNoAuthMode() bool {
	return i.noAuth != ""
}

// Configure builds the token validator from the flags.
func (i *Identity) Configure() (usecase.AuthUseCaseInterface, error) {
	if i.noAuth != "" {
		parts := strings.SplitN(i.noAuth, ":", 3)
		if len(parts) != 3 {
			return nil, goerr.Wrap(ErrInvalidIdentity, "no-auth must be <user>:<role>:<tenant>",
				goerr.V("value", i.noAuth))
		}
		role, err := types.ParseRole(parts[1])
		if err != nil {
			return nil, goerr.Wrap(err, "invalid no-auth role")
		}
		tenantID := types.TenantID(parts[2])
		if err := tenantID.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid no-auth tenant")
		}
		logging.Default().Warn("Running in no-auth mode (development only)",
			"user", parts[0], "role", role, "tenant", tenantID)
		return usecase.NewNoAuthnUseCase(types.UserID(parts[0]), role, tenantID), nil
	}

	var opts []usecase.AuthOption
	if i.jwksURL != "" {
		opts = append(opts, usecase.WithJWKSURL(i.jwksURL))
	}
	if i.jwtSecret != "" {
		opts = append(opts, usecase.WithSecret([]byte(i.jwtSecret)))
	}

	authUC, err := usecase.NewAuthUseCase(opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure token verification")
	}
	return authUC, nil
}
