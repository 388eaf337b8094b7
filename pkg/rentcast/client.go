// Package rentcast provides a client for the RentCast market and listings API.
package rentcast

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

	"github.com/rotisserie/eris"
)

const (
	// DefaultBaseURL is the public RentCast API root.
	DefaultBaseURL = "https://api.rentcast.io/v1"

	// DefaultListingLimit is the page size requested from /listings/sale.
	DefaultListingLimit = 50
)

// Client performs RentCast API operations.
type Client interface {
	Markets(ctx context.Context, zip string) (map[string]any, error)
	SaleListings(ctx context.Context, zip string, limit int) ([]map[string]any, error)
}

// APIError is returned for non-200 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rentcast: unexpected status %d", e.StatusCode)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a RentCast API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Markets returns the raw market statistics object for a ZIP code.
func (c *httpClient) Markets(ctx context.Context, zip string) (map[string]any, error) {
	body, err := c.get(ctx, "/markets", url.Values{"zipCode": {zip}})
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "rentcast: unmarshal markets")
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// SaleListings returns active sale listings. The endpoint answers either with
// a bare array or with an object wrapping "listings" or "data".
func (c *httpClient) SaleListings(ctx context.Context, zip string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = DefaultListingLimit
	}
	body, err := c.get(ctx, "/listings/sale", url.Values{
		"zipCode": {zip},
		"limit":   {strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, err
	}

	var list []map[string]any
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Listings []map[string]any `json:"listings"`
		Data     []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, eris.Wrap(err, "rentcast: unmarshal listings")
	}
	if wrapped.Listings != nil {
		return wrapped.Listings, nil
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return []map[string]any{}, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := strings.TrimRight(c.baseURL, "/") + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "rentcast: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "rentcast: send request %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "rentcast: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
