package authapi

import (
	"context"
	"net/http"
	"time"

	"casavia/internal/auth/session"
)

type principalContextKey struct{}

// PrincipalFromContext returns the verified principal attached by RequireAuth.
// The second return is false for anonymous requests (only possible when auth
// enforcement is disabled).
func PrincipalFromContext(ctx context.Context) (session.AccessClaims, bool) {
	claims, ok := ctx.Value(principalContextKey{}).(session.AccessClaims)
	return claims, ok
}

// RequireAuth is the gate in front of protected routes.
//
// Missing credentials and bad credentials are distinct outcomes: no
// Authorization header is 401, a present-but-invalid or expired token is 403.
// The client relies on that split to tell "never signed in" from "needs a
// refresh". On success the decoded principal is attached to the request
// context; the user record is not re-fetched here.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.sessions.Enforced() {
			next.ServeHTTP(w, r)
			return
		}

		tok := bearerToken(r)
		if tok == "" {
			WriteMessage(w, http.StatusUnauthorized, msgTokenRequired)
			return
		}

		claims, err := h.sessions.VerifyAccess(tok, time.Now().UTC())
		if err != nil {
			WriteMessage(w, http.StatusForbidden, msgUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
