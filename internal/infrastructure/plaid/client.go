package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 60 * time.Second

	linkTokenPath      = "/link/token/create"
	exchangePath       = "/item/public_token/exchange"
	accountsPath       = "/accounts/get"
	institutionPath    = "/institutions/get_by_id"
	processorTokenPath = "/processor/token/create"
	syncPath           = "/transactions/sync"
)

// Client handles communication with the account-aggregation API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

type Config struct {
	BaseURL  string
	ClientID string
	Secret   string
}

func New(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
	}
}

type linkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

// CreateLinkToken starts the account-linking flow for a user.
func (c *Client) CreateLinkToken(ctx context.Context, userID, clientName string) (string, error) {
	body := map[string]any{
		"user":          map[string]string{"client_user_id": userID},
		"client_name":   clientName,
		"products":      []string{"auth", "transactions"},
		"language":      "en",
		"country_codes": []string{"US"},
	}

	var resp linkTokenResponse
	if err := c.post(ctx, linkTokenPath, body, &resp); err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

// ExchangeResult is the outcome of trading a public token for durable access.
type ExchangeResult struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// ExchangePublicToken trades the short-lived public token from the link flow
// for an access token and the item id identifying the bank connection.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	body := map[string]any{"public_token": publicToken}

	var resp ExchangeResult
	if err := c.post(ctx, exchangePath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Balances carries the vendor-reported account balances.
type Balances struct {
	Available float64 `json:"available"`
	Current   float64 `json:"current"`
}

// Account is one account under an item, as the vendor reports it.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

type Item struct {
	ItemID        string `json:"item_id"`
	InstitutionID string `json:"institution_id"`
}

type AccountsResponse struct {
	Accounts []Account `json:"accounts"`
	Item     Item      `json:"item"`
}

// GetAccounts lists the accounts reachable through an access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error) {
	body := map[string]any{"access_token": accessToken}

	var resp AccountsResponse
	if err := c.post(ctx, accountsPath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type Institution struct {
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
}

type institutionResponse struct {
	Institution Institution `json:"institution"`
}

// GetInstitution looks up institution details by id.
func (c *Client) GetInstitution(ctx context.Context, institutionID string) (*Institution, error) {
	body := map[string]any{
		"institution_id": institutionID,
		"country_codes":  []string{"US"},
	}

	var resp institutionResponse
	if err := c.post(ctx, institutionPath, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Institution, nil
}

type processorTokenResponse struct {
	ProcessorToken string `json:"processor_token"`
}

// CreateProcessorToken mints a processor token so the payment rail can
// reference this account without seeing the access token.
func (c *Client) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error) {
	body := map[string]any{
		"access_token": accessToken,
		"account_id":   accountID,
		"processor":    processor,
	}

	var resp processorTokenResponse
	if err := c.post(ctx, processorTokenPath, body, &resp); err != nil {
		return "", err
	}
	return resp.ProcessorToken, nil
}

// Transaction is one vendor-synced transaction.
type Transaction struct {
	TransactionID  string   `json:"transaction_id"`
	AccountID      string   `json:"account_id"`
	Name           string   `json:"name"`
	Amount         float64  `json:"amount"`
	Date           string   `json:"date"` // YYYY-MM-DD
	Pending        bool     `json:"pending"`
	PaymentChannel string   `json:"payment_channel"`
	Category       []string `json:"category"`
	LogoURL        string   `json:"logo_url"`
}

// SyncResponse is one page of the cursor-based transaction feed.
type SyncResponse struct {
	Added      []Transaction `json:"added"`
	NextCursor string        `json:"next_cursor"`
	HasMore    bool          `json:"has_more"`
}

// SyncTransactions fetches one page of transactions. Pass the cursor from
// the previous response, or empty for the first page.
func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncResponse, error) {
	body := map[string]any{"access_token": accessToken}
	if cursor != "" {
		body["cursor"] = cursor
	}

	var resp SyncResponse
	if err := c.post(ctx, syncPath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends a JSON request with the client credentials injected, decoding
// the response into out.
func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	body["client_id"] = c.clientID
	body["secret"] = c.secret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("aggregator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("aggregator returned status %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode aggregator response: %w", err)
	}
	return nil
}
