package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/arnabjk008/quietly-backend/internal/services"
)

type contextKey string

const claimsKey contextKey = "sessionClaims"

// SessionCookieName is the cookie the frontend stores the session token in.
// A Bearer Authorization header takes precedence when both are present.
const SessionCookieName = "quietly-session"

// TokenFromRequest extracts the raw session token from the Authorization
// header or the session cookie. Empty string when neither is set.
func TokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth rejects requests without a valid session token and stores the
// parsed claims in the request context for the handler.
func RequireAuth(tokens *services.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := TokenFromRequest(r)
			if tokenString == "" {
				unauthenticated(w)
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the session claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*services.Claims)
	return claims, ok
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"message":"Not Authenticated Please log in first"}`))
}
