package http

import (
	"net/http"
	"strings"

	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

// authMiddleware validates the bearer token and stores the resulting
// identity in the request context.
func authMiddleware(authUC usecase.AuthUseCaseInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// For NoAuthn mode or when authUC is not configured, always
			// use the fixed development identity.
			if authUC == nil {
				ctx := auth.ContextWithToken(r.Context(), auth.NewAnonymousUser())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if authUC.IsNoAuthn() {
				token, err := authUC.ValidateToken(r.Context(), "")
				if err != nil {
					http.Error(w, "Invalid authentication configuration", http.StatusInternalServerError)
					return
				}
				ctx := auth.ContextWithToken(r.Context(), token)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			token, err := authUC.ValidateToken(r.Context(), raw)
			if err != nil {
				http.Error(w, "Invalid authentication token", http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// selectedTenant reads the tenant the caller selected for this request.
func selectedTenant(r *http.Request) types.TenantID {
	return types.TenantID(r.Header.Get(TenantHeader))
}

// actorFrom extracts the authenticated identity placed in the context by
// authMiddleware, answering 401 itself when none is present.
func actorFrom(w http.ResponseWriter, r *http.Request) (*auth.Token, bool) {
	actor, err := auth.TokenFromContext(r.Context())
	if err != nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return nil, false
	}
	return actor, true
}
