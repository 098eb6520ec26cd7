package storefront

import (
	"context"
	"net/http"
	"strings"

	"RocketShoes/pkg/kit"
)

type ctxKey string

const sessionKey ctxKey = "session_id"

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionKey).(string)
	return v, ok && v != ""
}

// RequireSession accepts a bearer token, or a token query parameter for
// clients that cannot set headers (browser websockets).
func RequireSession(tokens *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.URL.Query().Get("token")
			if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
				raw = strings.TrimPrefix(authz, "Bearer ")
			}
			if raw == "" {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
