package config

// NewIdentityForTest builds an Identity with preset flag values,
// bypassing CLI flag parsing.
func NewIdentityForTest(jwksURL, jwtSecret, noAuth string) *Identity {
	return &Identity{
		jwksURL:   jwksURL,
		jwtSecret: jwtSecret,
		noAuth:    noAuth,
	}
}
