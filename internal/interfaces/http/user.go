package http

import (
	"encoding/json"
	"log"
	"net/http"

	"finlink/internal/domain/user"
)

type UserHandler struct {
	users *user.Service
}

func NewUserHandler(users *user.Service) *UserHandler {
	return &UserHandler{users: users}
}

type MeResponse struct {
	User *user.Profile `json:"user"`
}

// HandleMe resolves the session to a profile. A guest (no cookie, expired
// token, deleted user) gets a 200 with a null user, not an error.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	profile, err := h.users.CurrentUser(r.Context(), sessionToken(r))
	if err != nil {
		log.Printf("Failed to resolve current user: %v", err)
		http.Error(w, "Failed to resolve current user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MeResponse{User: profile})
}
