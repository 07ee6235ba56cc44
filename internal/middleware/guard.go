package middleware

import (
	"net/http"
	"strings"

	"github.com/arnabjk008/quietly-backend/internal/services"
)

// RouteClass is how the guard sees a path: pages that only make sense when
// signed out, pages that require a session, and everything else.
type RouteClass int

const (
	Public RouteClass = iota
	AuthOnly
	ProtectedOwner
)

// Decision is the guard's verdict for one request. Redirect is only set when
// Allow is false.
type Decision struct {
	Allow    bool
	Redirect string
}

// ClassifyPath maps a navigation path onto its route class. The anonymous
// submission page (/u/{username}) is deliberately public.
func ClassifyPath(path string) RouteClass {
	switch {
	case strings.HasPrefix(path, "/sign-in"),
		strings.HasPrefix(path, "/sign-up"),
		strings.HasPrefix(path, "/verify"):
		return AuthOnly
	case strings.HasPrefix(path, "/dashboard"):
		return ProtectedOwner
	default:
		return Public
	}
}

// Decide is a pure function of token validity and route class. Signed-in
// users are bounced off the auth pages; signed-out users are bounced off the
// dashboard.
func Decide(hasValidToken bool, class RouteClass) Decision {
	switch class {
	case AuthOnly:
		if hasValidToken {
			return Decision{Redirect: "/dashboard"}
		}
	case ProtectedOwner:
		if !hasValidToken {
			return Decision{Redirect: "/sign-in"}
		}
	}
	return Decision{Allow: true}
}

// RouteGuard applies Decide to navigation requests, redirecting to the
// frontend when the decision says so. frontendURL is the base the redirect
// targets are resolved against.
func RouteGuard(tokens *services.TokenIssuer, frontendURL string) func(http.Handler) http.Handler {
	base := strings.TrimRight(frontendURL, "/")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasValidToken := false
			if tokenString := TokenFromRequest(r); tokenString != "" {
				if _, err := tokens.Parse(tokenString); err == nil {
					hasValidToken = true
				}
			}

			decision := Decide(hasValidToken, ClassifyPath(r.URL.Path))
			if !decision.Allow {
				http.Redirect(w, r, base+decision.Redirect, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
