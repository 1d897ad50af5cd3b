package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"finlink/internal/domain/bank"
	"finlink/internal/domain/transaction"
	"finlink/internal/infrastructure/crypto"
	"finlink/internal/infrastructure/plaid"
	"finlink/internal/shared/middleware"
)

// MockBankRepo implements bank.Repository for testing
type MockBankRepo struct {
	CreateFunc                 func(ctx context.Context, params bank.CreateParams) (*bank.Bank, bool, error)
	GetByIDFunc                func(ctx context.Context, id string) (*bank.Bank, error)
	GetByExternalAccountIDFunc func(ctx context.Context, accountID string) (*bank.Bank, error)
	ListByUserIDFunc           func(ctx context.Context, userID string) ([]*bank.Bank, error)
}

func (m *MockBankRepo) Create(ctx context.Context, params bank.CreateParams) (*bank.Bank, bool, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, false, nil
}

func (m *MockBankRepo) GetByID(ctx context.Context, id string) (*bank.Bank, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBankRepo) GetByExternalAccountID(ctx context.Context, accountID string) (*bank.Bank, error) {
	if m.GetByExternalAccountIDFunc != nil {
		return m.GetByExternalAccountIDFunc(ctx, accountID)
	}
	return nil, nil
}

func (m *MockBankRepo) ListByUserID(ctx context.Context, userID string) ([]*bank.Bank, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

// MockAggregator implements bank.Aggregator for testing
type MockAggregator struct {
	CreateLinkTokenFunc func(ctx context.Context, userID, clientName string) (string, error)
	GetAccountsFunc     func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error)
}

func (m *MockAggregator) CreateLinkToken(ctx context.Context, userID, clientName string) (string, error) {
	if m.CreateLinkTokenFunc != nil {
		return m.CreateLinkTokenFunc(ctx, userID, clientName)
	}
	return "link-tok", nil
}

func (m *MockAggregator) ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResult, error) {
	return &plaid.ExchangeResult{AccessToken: "access-tok", ItemID: "item-1"}, nil
}

func (m *MockAggregator) GetAccounts(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx, accessToken)
	}
	return &plaid.AccountsResponse{}, nil
}

func (m *MockAggregator) GetInstitution(ctx context.Context, institutionID string) (*plaid.Institution, error) {
	return &plaid.Institution{InstitutionID: institutionID, Name: "Test Bank"}, nil
}

func (m *MockAggregator) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error) {
	return "processor-tok", nil
}

type MockFundingRail struct{}

func (m *MockFundingRail) CreateFundingSource(ctx context.Context, customerURL, processorToken, name string) (string, error) {
	return "https://rail/funding-sources/fs-1", nil
}

type MockFeedProvider struct {
	FeedFunc func(ctx context.Context, accessToken, bankID string) (*transaction.Feed, error)
}

func (m *MockFeedProvider) Feed(ctx context.Context, accessToken, bankID string) (*transaction.Feed, error) {
	if m.FeedFunc != nil {
		return m.FeedFunc(ctx, accessToken, bankID)
	}
	return &transaction.Feed{}, nil
}

const testEncryptionKey = "01234567890123456789012345678901"

func newBankHandler(t *testing.T, banks bank.Repository, vendor bank.Aggregator, feeds bank.FeedProvider) *BankHandler {
	t.Helper()
	enc, err := crypto.NewEncryptor(testEncryptionKey)
	if err != nil {
		t.Fatalf("NewEncryptor() failed: %v", err)
	}
	svc := bank.NewService(banks, &MockUserRepo{}, vendor, &MockFundingRail{}, feeds, enc)
	return NewBankHandler(svc)
}

func authedRequest(method, target string, userID string) *http.Request {
	return authedJSONRequest(method, target, userID, nil)
}

func authedJSONRequest(method, target, userID string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func TestHandleLinkToken(t *testing.T) {
	handler := newBankHandler(t, &MockBankRepo{}, &MockAggregator{}, &MockFeedProvider{})

	req := authedRequest(http.MethodPost, "/api/plaid/link-token", "user-1")
	w := httptest.NewRecorder()
	handler.HandleLinkToken(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp LinkTokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.LinkToken != "link-tok" {
		t.Errorf("linkToken = %q, want link-tok", resp.LinkToken)
	}
}

func TestHandleLinkToken_NoSession(t *testing.T) {
	handler := newBankHandler(t, &MockBankRepo{}, &MockAggregator{}, &MockFeedProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/plaid/link-token", nil)
	w := httptest.NewRecorder()
	handler.HandleLinkToken(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestHandleAccountByID(t *testing.T) {
	stored := &bank.Bank{ID: "bank-1", UserID: "user-1", PlaidAccountID: "acct-1", AccessToken: "tok"}
	banks := &MockBankRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*bank.Bank, error) {
			if id == "bank-1" {
				return stored, nil
			}
			return nil, nil
		},
	}
	vendor := &MockAggregator{
		GetAccountsFunc: func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
			return &plaid.AccountsResponse{
				Accounts: []plaid.Account{{AccountID: "acct-1", Name: "Checking"}},
			}, nil
		},
	}
	feeds := &MockFeedProvider{
		FeedFunc: func(ctx context.Context, accessToken, bankID string) (*transaction.Feed, error) {
			return &transaction.Feed{Transactions: []transaction.Transaction{{ID: "t1"}}}, nil
		},
	}
	handler := newBankHandler(t, banks, vendor, feeds)

	tests := []struct {
		name       string
		userID     string
		bankID     string
		wantStatus int
	}{
		{"Owner", "user-1", "bank-1", http.StatusOK},
		{"OtherUser", "user-2", "bank-1", http.StatusForbidden},
		{"Unknown", "user-1", "missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(http.MethodGet, "/api/accounts/"+tt.bankID, tt.userID)
			req.SetPathValue("id", tt.bankID)
			w := httptest.NewRecorder()
			handler.HandleAccountByID(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleListAccounts_Error(t *testing.T) {
	banks := &MockBankRepo{
		ListByUserIDFunc: func(ctx context.Context, userID string) ([]*bank.Bank, error) {
			return nil, errors.New("db down")
		},
	}
	handler := newBankHandler(t, banks, &MockAggregator{}, &MockFeedProvider{})

	req := authedRequest(http.MethodGet, "/api/accounts", "user-1")
	w := httptest.NewRecorder()
	handler.HandleListAccounts(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
