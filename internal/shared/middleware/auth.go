package middleware

import (
	"context"
	"net/http"
	"strings"

	"finlink/internal/shared/auth"
)

type ContextKey string

const (
	// UserIDKey carries the authenticated user's id through the request context.
	UserIDKey ContextKey = "user_id"
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "token"

// UserIDFromContext extracts the authenticated user id placed by the gates.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// Auth gates API routes. It accepts the session cookie first (browser
// requests) and falls back to an Authorization bearer header (API clients),
// responding 401 on any failure.
func Auth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				token = cookie.Value
			} else {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					http.Error(w, "Authentication required", http.StatusUnauthorized)
					return
				}
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || parts[0] != "Bearer" {
					http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
					return
				}
				token = parts[1]
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
