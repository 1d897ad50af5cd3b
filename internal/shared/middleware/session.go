package middleware

import (
	"context"
	"net/http"
	"strings"

	"finlink/internal/shared/auth"
)

// sessionExemptPrefixes lists the paths the page gate never touches: static
// assets, the auth entry pages, and API routes which carry their own gate.
var sessionExemptPrefixes = []string{
	"/api",
	"/assets",
	"/favicon.ico",
	"/icons",
	"/sign-in",
	"/sign-up",
	"/health",
	"/metrics",
}

// SessionGate protects every page route outside the exempt list. A request
// with no session cookie is redirected to sign-up; one with an invalid or
// expired cookie is redirected to sign-in. Valid sessions pass through with
// the user id in the request context.
func SessionGate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range sessionExemptPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				http.Redirect(w, r, "/sign-up", http.StatusFound)
				return
			}

			userID, err := tokens.Verify(cookie.Value)
			if err != nil {
				http.Redirect(w, r, "/sign-in", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
