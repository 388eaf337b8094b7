// Package permits queries an open-data (Socrata style) building permit
// endpoint.
package permits

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

// DefaultLimit is the number of records requested per search.
const DefaultLimit = 10

// ErrNotArray is returned when the endpoint answers with something other than
// a JSON array of records.
var ErrNotArray = eris.New("permits: response is not an array")

// Client searches permit records.
type Client interface {
	Search(ctx context.Context, zip, city string) ([]map[string]any, error)
	Source() string
}

// APIError is returned for non-200 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("permits: unexpected status %d", e.StatusCode)
}

// Option configures the client.
type Option func(*httpClient)

// WithQuery sets the $where template. {zip_code} and {city} are substituted
// per search.
func WithQuery(template string) Option {
	return func(c *httpClient) {
		c.query = template
	}
}

// WithLimit overrides the $limit parameter.
func WithLimit(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	query   string
	limit   int
	http    *http.Client
}

// NewClient creates a permit search client for the given endpoint URL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		limit:   DefaultLimit,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Source() string { return c.baseURL }

// Where renders the $where template for a search.
func Where(template, zip, city string) string {
	return strings.NewReplacer("{zip_code}", zip, "{city}", city).Replace(template)
}

func (c *httpClient) Search(ctx context.Context, zip, city string) ([]map[string]any, error) {
	params := url.Values{"$limit": {strconv.Itoa(c.limit)}}
	if c.query != "" {
		params.Set("$where", Where(c.query, zip, city))
	}

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+sep+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "permits: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "permits: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "permits: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var records []map[string]any
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, ErrNotArray
	}
	return records, nil
}
