// Package walkscore provides a client for the Walk Score API.
package walkscore

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

const defaultBaseURL = "https://api.walkscore.com"

// StatusOK is the Walk Score status code for a successful score lookup.
const StatusOK = 1

// Client performs Walk Score API operations.
type Client interface {
	Score(ctx context.Context, lat, lon float64, address string) (*Response, error)
}

// Response is the subset of the /score payload we consume.
type Response struct {
	Status      int       `json:"status"`
	WalkScore   *int      `json:"walkscore"`
	Description *string   `json:"description"`
	Transit     *subScore `json:"transit"`
	Bike        *subScore `json:"bike"`
}

type subScore struct {
	Score *int `json:"score"`
}

// TransitScore returns the transit score when the API included one.
func (r *Response) TransitScore() *int {
	if r.Transit == nil {
		return nil
	}
	return r.Transit.Score
}

// BikeScore returns the bike score when the API included one.
func (r *Response) BikeScore() *int {
	if r.Bike == nil {
		return nil
	}
	return r.Bike.Score
}

// APIError is returned for non-200 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("walkscore: unexpected status %d", e.StatusCode)
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

// NewClient creates a Walk Score API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Score(ctx context.Context, lat, lon float64, address string) (*Response, error) {
	params := url.Values{
		"format":   {"json"},
		"address":  {address},
		"lat":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":      {strconv.FormatFloat(lon, 'f', -1, 64)},
		"transit":  {"1"},
		"bike":     {"1"},
		"wsapikey": {c.apiKey},
	}
	reqURL := strings.TrimRight(c.baseURL, "/") + "/score?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "walkscore: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "walkscore: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "walkscore: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "walkscore: unmarshal response")
	}
	return &out, nil
}
