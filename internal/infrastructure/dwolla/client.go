package dwolla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 30 * time.Second

// Client talks to the payment rail. Created resources come back as the
// Location header of a 201 response, which is how the vendor's HAL API
// reports them.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

type Config struct {
	BaseURL string
	Token   string
}

func New(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
	}
}

// CustomerParams describes a personal verified customer.
type CustomerParams struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Type        string `json:"type"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
}

// CreateCustomer provisions a customer on the rail and returns its resource URL.
func (c *Client) CreateCustomer(ctx context.Context, params CustomerParams) (string, error) {
	if params.Type == "" {
		params.Type = "personal"
	}
	return c.postForLocation(ctx, c.baseURL+"/customers", params)
}

type fundingSourceRequest struct {
	PlaidToken string `json:"plaidToken"`
	Name       string `json:"name"`
}

// CreateFundingSource attaches a funding source to a customer from an
// aggregator processor token and returns the funding source URL.
func (c *Client) CreateFundingSource(ctx context.Context, customerURL, processorToken, name string) (string, error) {
	if customerURL == "" {
		return "", fmt.Errorf("customer URL is required")
	}
	body := fundingSourceRequest{PlaidToken: processorToken, Name: name}
	return c.postForLocation(ctx, customerURL+"/funding-sources", body)
}

type transferLink struct {
	Href string `json:"href"`
}

type transferRequest struct {
	Links  map[string]transferLink `json:"_links"`
	Amount transferAmount          `json:"amount"`
}

type transferAmount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

// CreateTransfer moves funds between two funding sources and returns the
// transfer resource URL as confirmation. No URL means no confirmed transfer.
func (c *Client) CreateTransfer(ctx context.Context, sourceURL, destinationURL string, amount decimal.Decimal) (string, error) {
	if sourceURL == "" || destinationURL == "" {
		return "", fmt.Errorf("source and destination funding sources are required")
	}

	body := transferRequest{
		Links: map[string]transferLink{
			"source":      {Href: sourceURL},
			"destination": {Href: destinationURL},
		},
		Amount: transferAmount{Currency: "USD", Value: amount.StringFixed(2)},
	}
	return c.postForLocation(ctx, c.baseURL+"/transfers", body)
}

// postForLocation issues a POST and returns the Location header of the
// created resource.
func (c *Client) postForLocation(ctx context.Context, url string, body any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/vnd.dwolla.v1.hal+json")
	req.Header.Set("Accept", "application/vnd.dwolla.v1.hal+json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment rail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("payment rail returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("payment rail returned no resource location")
	}
	return location, nil
}

// ExtractCustomerID returns the trailing id segment of a customer URL.
func ExtractCustomerID(customerURL string) string {
	if idx := strings.LastIndex(customerURL, "/"); idx != -1 {
		return customerURL[idx+1:]
	}
	return customerURL
}
