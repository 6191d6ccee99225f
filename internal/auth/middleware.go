package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write the
// claims value — no other package can collide with or shadow it.
type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the Authorization header ("Bearer <token>"), validates the token,
// and stores the claims in the request context. A missing or invalid token
// stops the chain with 401 and the fixed invalid-token body — the middleware
// deliberately doesn't distinguish the failure modes.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.Validate(r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Invalid access token!"}`))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the authenticated caller's claims.
//
// Returns (nil, false) when the request never passed through RequireAuth —
// handlers behind the middleware can rely on ok being true.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}
