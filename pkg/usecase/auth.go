package usecase

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// AuthUseCaseInterface validates bearer tokens presented at the HTTP
// boundary.
type AuthUseCaseInterface interface {
	ValidateToken(ctx context.Context, raw string) (*auth.Token, error)
	IsNoAuthn() bool
}

// AuthUseCase verifies JWTs issued by the external identity provider,
// either against its JWKS endpoint or a static HS256 secret for
// development. The identity provider owns credentials; this layer only
// checks the signature and extracts the asserted identity triple.
type AuthUseCase struct {
	jwksURL string
	secret  []byte
}

// AuthOption is a functional option for AuthUseCase.
type AuthOption func(*AuthUseCase)

// WithJWKSURL verifies tokens against the given JWKS endpoint.
func WithJWKSURL(url string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.jwksURL = url
	}
}

// WithSecret verifies tokens with a shared HS256 secret.
func WithSecret(secret []byte) AuthOption {
	return func(uc *AuthUseCase) {
		uc.secret = secret
	}
}

func NewAuthUseCase(options ...AuthOption) (*AuthUseCase, error) {
	uc := &AuthUseCase{}
	for _, opt := range options {
		opt(uc)
	}
	if uc.jwksURL == "" && len(uc.secret) == 0 {
		return nil, goerr.New("either a JWKS URL or a JWT secret is required")
	}
	return uc, nil
}

// IsNoAuthn returns false for the verifying use case.
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// ValidateToken verifies the JWT and extracts the identity triple from
// its claims: sub, role, tenant_id, plus optional email and name.
func (uc *AuthUseCase) ValidateToken(ctx context.Context, raw string) (*auth.Token, error) {
	// Allow 10 seconds of clock skew to handle time synchronization
	// differences with the identity provider.
	options := []jwt.ParseOption{
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(10 * time.Second),
	}

	if uc.jwksURL != "" {
		keySet, err := jwk.Fetch(ctx, uc.jwksURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch identity provider keys",
				goerr.V("jwks_url", uc.jwksURL))
		}
		options = append(options, jwt.WithKeySet(keySet))
	} else {
		options = append(options, jwt.WithKey(jwa.HS256, uc.secret))
	}

	parsed, err := jwt.Parse([]byte(raw), options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse or verify token")
	}

	sub := parsed.Subject()
	if sub == "" {
		return nil, goerr.New("sub claim not found in token")
	}

	roleStr, err := stringClaim(parsed, "role")
	if err != nil {
		return nil, err
	}
	role, err := types.ParseRole(roleStr)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid role claim")
	}

	tenantStr, err := stringClaim(parsed, "tenant_id")
	if err != nil {
		return nil, err
	}
	tenantID := types.TenantID(tenantStr)
	if err := tenantID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid tenant_id claim")
	}

	token := &auth.Token{
		Sub:      types.UserID(sub),
		Role:     role,
		TenantID: tenantID,
	}
	if email, ok := parsed.Get("email"); ok {
		if s, ok := email.(string); ok {
			token.Email = s
		}
	}
	if name, ok := parsed.Get("name"); ok {
		if s, ok := name.(string); ok {
			token.Name = s
		}
	}

	return token, nil
}

func stringClaim(token jwt.Token, name string) (string, error) {
	value, ok := token.Get(name)
	if !ok {
		return "", goerr.New("claim not found in token", goerr.V("claim", name))
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", goerr.New("claim is not a non-empty string", goerr.V("claim", name))
	}
	return s, nil
}
