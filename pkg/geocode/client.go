package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/laundryease/backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://nominatim.openstreetmap.org"
	defaultUserAgent            = "laundryease-backend"
	responseBodyReadLimit int64 = 1024
)

// Coordinates is a longitude/latitude pair.
type Coordinates struct {
	Longitude float64
	Latitude  float64
}

// Geocoder resolves free-form addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

// Client queries the Nominatim search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
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

// WithBaseURL overrides the Nominatim base URL, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithUserAgent sets the User-Agent header Nominatim requires.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(userAgent)
		if trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// NewClient builds a Nominatim geocoding client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
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
	return client
}

// Geocode resolves the first match for the address. A query with no
// matches returns NotFound so callers can fall back to zero coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (Coordinates, error) {
	if c == nil {
		return Coordinates{}, pkgerrors.New(pkgerrors.CodeDependency, "geocoder not configured")
	}
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return Coordinates{}, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	query := url.Values{}
	query.Set("q", trimmed)
	query.Set("format", "json")
	query.Set("limit", "1")

	endpoint := strings.TrimRight(c.baseURL, "/") + "/search?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "geocode request failed")
	}

	var results []struct {
		Lon string `json:"lon"`
		Lat string `json:"lat"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}
	if len(results) == 0 {
		return Coordinates{}, pkgerrors.New(pkgerrors.CodeNotFound, "no geocode match")
	}

	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse longitude")
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse latitude")
	}

	return Coordinates{Longitude: lon, Latitude: lat}, nil
}
