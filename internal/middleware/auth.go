package middleware

import (
	"net/http"
	"strings"

	"github.com/pkordes/tripplanner/backend/internal/auth"
)

// TokenVerifier turns a bearer token into a principal.
// *auth.Verifier satisfies it.
type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// NewAuthenticator returns a middleware that requires an
// "Authorization: Bearer <token>" header, verifies the token, and stores the
// principal in the request context. Anything else gets 401.
func NewAuthenticator(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing authorization header")
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid authorization header")
				return
			}
			p, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}
