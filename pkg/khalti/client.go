package khalti

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/laundryease/backend/pkg/errors"
)

const (
	sandboxBaseURL               = "https://dev.khalti.com/api/v2"
	productionBaseURL            = "https://khalti.com/api/v2"
	responseBodyReadLimit  int64 = 1024
	statusCompleted              = "Completed"
	statusPending                = "Pending"
	statusRefunded               = "Refunded"
	statusExpired                = "Expired"
	statusUserCanceled           = "User canceled"
)

var errSecretKeyRequired = errors.New("khalti secret key is required")

// Client wraps the Khalti ePayment APIs used for checkout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the gateway base URL, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Khalti client for the given environment.
// Environment "production" targets the live gateway, anything else the sandbox.
func NewClient(secretKey, environment string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(secretKey)
	if trimmedKey == "" {
		return nil, errSecretKeyRequired
	}

	baseURL := sandboxBaseURL
	if strings.EqualFold(strings.TrimSpace(environment), "production") {
		baseURL = productionBaseURL
	}

	client := &Client{
		secretKey:  trimmedKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return client, nil
}

// InitiateResponse is the gateway's answer to a payment initiation.
type InitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
}

// LookupResponse is the gateway's view of a payment identified by pidx.
type LookupResponse struct {
	Pidx          string `json:"pidx"`
	TotalAmount   int64  `json:"total_amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Fee           int64  `json:"fee"`
	Refunded      bool   `json:"refunded"`
}

// Completed reports whether the gateway settled the payment.
func (l LookupResponse) Completed() bool {
	return l.Status == statusCompleted
}

// Terminal reports whether the payment can no longer complete.
func (l LookupResponse) Terminal() bool {
	switch l.Status {
	case statusExpired, statusUserCanceled, statusRefunded:
		return true
	}
	return false
}

// Initiate registers a payment with the gateway and returns the hosted
// checkout URL plus the pidx used for later lookups.
func (c *Client) Initiate(ctx context.Context, req PaymentRequest) (*InitiateResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "khalti client not configured")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal initiate request")
	}

	var apiResp InitiateResponse
	if err := c.post(ctx, "/epayment/initiate/", payload, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Pidx == "" || apiResp.PaymentURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "khalti initiate returned incomplete payload")
	}
	return &apiResp, nil
}

// Lookup fetches the authoritative payment state for a pidx.
func (c *Client) Lookup(ctx context.Context, pidx string) (*LookupResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "khalti client not configured")
	}
	trimmed := strings.TrimSpace(pidx)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pidx is required")
	}

	payload, err := json.Marshal(map[string]string{"pidx": trimmed})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal lookup request")
	}

	var apiResp LookupResponse
	if err := c.post(ctx, "/epayment/lookup/", payload, &apiResp); err != nil {
		return nil, err
	}
	return &apiResp, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte, out any) error {
	url := strings.TrimRight(c.baseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build khalti request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute khalti request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "khalti rejected the request")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "khalti request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode khalti response")
	}
	return nil
}
