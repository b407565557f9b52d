package organizze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
)

// DefaultBaseURL is the production Organizze REST API.
const DefaultBaseURL = "https://api.organizze.com.br/rest/v2"

// UpstreamError is returned for any non-2xx response from the Organizze API.
type UpstreamError struct {
	URL        string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("organizze: GET %s returned status %d", e.URL, e.StatusCode)
}

// Client is a read-only client for the Organizze REST v2 API. Every request
// carries HTTP Basic auth and an identifying User-Agent, as the API requires.
type Client struct {
	baseURL   string
	email     string
	apiKey    string
	userAgent string
	http      *http.Client
}

// New creates a client against the production API.
func New(email, apiKey string) *Client {
	return NewWithBaseURL(DefaultBaseURL, email, apiKey)
}

// NewWithBaseURL creates a client against a specific base URL. Used by tests.
func NewWithBaseURL(baseURL, email, apiKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		email:     email,
		apiKey:    apiKey,
		userAgent: fmt.Sprintf("myPay Sync (%s)", email),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Accounts fetches all bank accounts, archived ones included.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.get(ctx, "/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Categories fetches the category taxonomy.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.get(ctx, "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreditCards fetches all credit cards, archived ones included.
func (c *Client) CreditCards(ctx context.Context) ([]CreditCard, error) {
	var cards []CreditCard
	if err := c.get(ctx, "/credit_cards", &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// Transactions fetches every transaction in the inclusive date window. The
// API returns the whole window in one response; callers choose windows small
// enough for that.
func (c *Client) Transactions(ctx context.Context, start, end civil.Date) ([]Transaction, error) {
	path := fmt.Sprintf("/transactions?start_date=%s&end_date=%s", start, end)
	var txs []Transaction
	if err := c.get(ctx, path, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("organizze: building request for %s: %w", url, err)
	}
	req.SetBasicAuth(c.email, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("organizze: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("organizze: reading response from %s: %w", url, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("organizze: decoding response from %s: %w", url, err)
	}
	return nil
}
