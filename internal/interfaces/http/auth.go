package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"finlink/internal/domain/user"
	"finlink/internal/shared/auth"
	"finlink/internal/shared/middleware"
)

type AuthHandler struct {
	users *user.Service
}

func NewAuthHandler(users *user.Service) *AuthHandler {
	return &AuthHandler{users: users}
}

type AuthResponse struct {
	Token string        `json:"token"`
	User  *user.Profile `json:"user"`
}

// HandleSignUp registers a user and opens a session.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params user.SignUpParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, token, err := h.users.SignUp(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrMissingFields):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, user.ErrEmailExists):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("Sign-up failed: %v", err)
			http.Error(w, "Failed to sign up", http.StatusInternalServerError)
		}
		return
	}

	setSessionCookie(w, r, token)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{Token: token, User: profile})
}

// HandleSignIn authenticates a user and opens a session.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params user.SignInParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, token, err := h.users.SignIn(r.Context(), params)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		log.Printf("Sign-in failed: %v", err)
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, r, token)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{Token: token, User: profile})
}

// HandleLogout clears the session cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// setSessionCookie sets the session token as an HttpOnly cookie with the
// same lifetime as the token itself.
func setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.SessionTTL.Seconds()),
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// sessionToken pulls the token from the session cookie, falling back to a
// bearer header for non-browser clients. Empty means guest.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
