package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"finlink/internal/domain/bank"
	"finlink/internal/domain/transfer"
	"finlink/internal/shared/middleware"
)

type TransferHandler struct {
	transfers *transfer.Service
}

func NewTransferHandler(transfers *transfer.Service) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// HandleCreateTransfer moves funds between two linked accounts.
func (h *TransferHandler) HandleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var params transfer.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	params.SenderID = userID

	record, err := h.transfers.Create(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrInvalidParams),
			errors.Is(err, transfer.ErrInvalidShareableID),
			errors.Is(err, transfer.ErrSameAccount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, transfer.ErrReceiverNotFound), errors.Is(err, bank.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, bank.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		case errors.Is(err, transfer.ErrLedgerInconsistent):
			log.Printf("Transfer by user %s needs manual reconciliation: %v", userID, err)
			http.Error(w, "Transfer completed but could not be recorded", http.StatusInternalServerError)
		default:
			log.Printf("Transfer by user %s failed: %v", userID, err)
			http.Error(w, "Transfer failed", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"id":     record.ID,
		"name":   record.Name,
		"amount": record.Amount.StringFixed(2),
	})
}
