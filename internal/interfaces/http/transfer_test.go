package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"finlink/internal/domain/bank"
	"finlink/internal/domain/transaction"
	"finlink/internal/domain/transfer"
	"finlink/internal/infrastructure/crypto"
)

type MockTransactionRepo struct {
	CreateFunc func(ctx context.Context, params transaction.CreateRecordParams) (*transaction.Record, error)
}

func (m *MockTransactionRepo) Create(ctx context.Context, params transaction.CreateRecordParams) (*transaction.Record, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &transaction.Record{ID: "rec-1", Name: params.Name, Amount: params.Amount}, nil
}

func (m *MockTransactionRepo) ListByBankID(ctx context.Context, bankID string) ([]*transaction.Record, error) {
	return nil, nil
}

type MockTransferRail struct {
	Err error
}

func (m *MockTransferRail) CreateTransfer(ctx context.Context, sourceURL, destinationURL string, amount decimal.Decimal) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "https://rail/transfers/tr-1", nil
}

func newTransferHandler(t *testing.T, rail transfer.PaymentRail) (*TransferHandler, *crypto.Encryptor) {
	t.Helper()
	enc, err := crypto.NewEncryptor(testEncryptionKey)
	if err != nil {
		t.Fatalf("NewEncryptor() failed: %v", err)
	}

	sender := &bank.Bank{
		ID: "bank-sender", UserID: "user-1", PlaidAccountID: "acct-sender",
		FundingSourceURL: "https://rail/funding-sources/src",
	}
	receiver := &bank.Bank{
		ID: "bank-receiver", UserID: "user-2", PlaidAccountID: "acct-receiver",
		FundingSourceURL: "https://rail/funding-sources/dst",
	}
	banks := &MockBankRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*bank.Bank, error) {
			if id == sender.ID {
				return sender, nil
			}
			return nil, nil
		},
		GetByExternalAccountIDFunc: func(ctx context.Context, accountID string) (*bank.Bank, error) {
			if accountID == receiver.PlaidAccountID {
				return receiver, nil
			}
			return nil, nil
		},
	}

	svc := transfer.NewService(banks, &MockTransactionRepo{}, rail, enc)
	return NewTransferHandler(svc), enc
}

func transferBody(t *testing.T, enc *crypto.Encryptor, amount string) []byte {
	t.Helper()
	share, err := enc.Encrypt("acct-receiver")
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}
	body, _ := json.Marshal(map[string]string{
		"senderBankId": "bank-sender",
		"shareableId":  share,
		"amount":       amount,
		"email":        "friend@example.com",
	})
	return body
}

func TestHandleCreateTransfer(t *testing.T) {
	handler, enc := newTransferHandler(t, &MockTransferRail{})

	req := authedJSONRequest(http.MethodPost, "/api/transfers", "user-1", transferBody(t, enc, "25.50"))
	w := httptest.NewRecorder()
	handler.HandleCreateTransfer(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["amount"] != "25.50" {
		t.Errorf("amount = %q, want 25.50", resp["amount"])
	}
}

func TestHandleCreateTransfer_StatusMapping(t *testing.T) {
	handler, enc := newTransferHandler(t, &MockTransferRail{})

	badShare, _ := json.Marshal(map[string]string{
		"senderBankId": "bank-sender", "shareableId": "garbage", "amount": "10",
	})
	unknownReceiver, err := enc.Encrypt("acct-unknown")
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}
	unknownBody, _ := json.Marshal(map[string]string{
		"senderBankId": "bank-sender", "shareableId": unknownReceiver, "amount": "10",
	})

	tests := []struct {
		name       string
		userID     string
		body       []byte
		wantStatus int
	}{
		{"ZeroAmount", "user-1", transferBody(t, enc, "0"), http.StatusBadRequest},
		{"GarbageShareableID", "user-1", badShare, http.StatusBadRequest},
		{"UnknownReceiver", "user-1", unknownBody, http.StatusNotFound},
		{"ForeignSender", "user-2", transferBody(t, enc, "10"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedJSONRequest(http.MethodPost, "/api/transfers", tt.userID, tt.body)
			w := httptest.NewRecorder()
			handler.HandleCreateTransfer(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestHandleCreateTransfer_RailFailure(t *testing.T) {
	handler, enc := newTransferHandler(t, &MockTransferRail{Err: context.DeadlineExceeded})

	req := authedJSONRequest(http.MethodPost, "/api/transfers", "user-1", transferBody(t, enc, "10"))
	w := httptest.NewRecorder()
	handler.HandleCreateTransfer(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}
