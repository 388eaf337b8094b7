// Package census provides a client for the Census Bureau data API (ACS 5-year
// estimates).
package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://api.census.gov/data"

	// DefaultYear is the ACS vintage queried when none is given.
	DefaultYear = 2022
	// DefaultDataset is the ACS 5-year detailed tables dataset.
	DefaultDataset = "acs/acs5"
)

// ErrInvalidResponse is returned when a 200 response is not a JSON table.
var ErrInvalidResponse = eris.New("census: response is not a table")

// Client queries Census data tables.
type Client interface {
	Query(ctx context.Context, q Query) (*Table, error)
}

// Query selects variables for one geography.
type Query struct {
	Year    int
	Dataset string
	Get     []string
	// For is the geography predicate, e.g. "zip code tabulation area:94110".
	For string
	// In optionally restricts For, e.g. "state:06".
	In string
}

// Table is the decoded response: a header row followed by data rows. Values are
// kept as the API returned them (strings, numbers or null).
type Table struct {
	Header []string
	Rows   [][]any
}

// Empty reports whether the table carries no data rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Record returns the first data row keyed by header name.
func (t *Table) Record() map[string]any {
	if t.Empty() {
		return nil
	}
	rec := make(map[string]any, len(t.Header))
	for i, h := range t.Header {
		if i < len(t.Rows[0]) {
			rec[h] = t.Rows[0][i]
		}
	}
	return rec
}

// APIError is returned for non-200 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("census: unexpected status %d", e.StatusCode)
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

// NewClient creates a Census data API client.
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

func (c *httpClient) Query(ctx context.Context, q Query) (*Table, error) {
	if q.Year == 0 {
		q.Year = DefaultYear
	}
	if q.Dataset == "" {
		q.Dataset = DefaultDataset
	}

	params := url.Values{
		"get": {strings.Join(q.Get, ",")},
		"for": {q.For},
	}
	if q.In != "" {
		params.Set("in", q.In)
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	reqURL := fmt.Sprintf("%s/%d/%s?%s", strings.TrimRight(c.baseURL, "/"), q.Year, q.Dataset, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "census: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "census: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "census: read response")
	}

	// The API answers 204 with an empty body for unknown geographies.
	if resp.StatusCode == http.StatusNoContent {
		return &Table{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return &Table{}, nil
	}

	var raw [][]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(ErrInvalidResponse, err.Error())
	}
	if len(raw) == 0 {
		return &Table{}, nil
	}

	t := &Table{Header: make([]string, len(raw[0])), Rows: raw[1:]}
	for i, h := range raw[0] {
		t.Header[i] = fmt.Sprint(h)
	}
	return t, nil
}
