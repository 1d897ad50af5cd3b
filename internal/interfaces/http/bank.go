package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"finlink/internal/domain/bank"
	"finlink/internal/shared/middleware"
)

type BankHandler struct {
	banks *bank.Service
}

func NewBankHandler(banks *bank.Service) *BankHandler {
	return &BankHandler{banks: banks}
}

type LinkTokenResponse struct {
	LinkToken string `json:"linkToken"`
}

// HandleLinkToken starts the account-linking flow.
func (h *BankHandler) HandleLinkToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := h.banks.LinkToken(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to create link token for user %s: %v", userID, err)
		http.Error(w, "Failed to create link token", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LinkTokenResponse{LinkToken: token})
}

type ExchangeRequest struct {
	PublicToken string `json:"publicToken"`
}

type ExchangeResponse struct {
	LinkedAccounts int `json:"linkedAccounts"`
}

// HandleExchange finishes the linking flow for a newly linked item.
func (h *BankHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PublicToken == "" {
		http.Error(w, "publicToken is required", http.StatusBadRequest)
		return
	}

	linked, err := h.banks.ExchangePublicToken(r.Context(), userID, req.PublicToken)
	if err != nil {
		log.Printf("Failed to exchange public token for user %s: %v", userID, err)
		http.Error(w, "Failed to link accounts", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ExchangeResponse{LinkedAccounts: linked})
}

// HandleListAccounts returns the accounts overview for the session user.
func (h *BankHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	overview, err := h.banks.ListSummaries(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to build accounts overview for user %s: %v", userID, err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(overview)
}

// HandleAccountByID returns one account with its merged transaction history.
func (h *BankHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	detail, err := h.banks.AccountDetail(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, bank.ErrNotFound):
			http.Error(w, "Account not found", http.StatusNotFound)
		case errors.Is(err, bank.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			log.Printf("Failed to load account %s: %v", r.PathValue("id"), err)
			http.Error(w, "Failed to load account", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}
