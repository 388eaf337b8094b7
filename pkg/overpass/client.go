// Package overpass provides a client for the OpenStreetMap Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultURL is the public interpreter used when none is configured.
const DefaultURL = "https://overpass.private.coffee/api/interpreter"

// ErrInvalidResponse is returned when a 200 response carries no elements list.
var ErrInvalidResponse = eris.New("overpass: response has no elements list")

// Client runs Overpass QL queries.
type Client interface {
	Run(ctx context.Context, q Query) (*Response, error)
	URL() string
}

// Response is a decoded interpreter result.
type Response struct {
	Elements []Element `json:"elements"`
}

// Element is one OSM node, way or relation (or a count summary).
type Element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Tags map[string]string `json:"tags,omitempty"`
}

// Names returns the non-empty name tags in element order.
func (r *Response) Names() []string {
	var names []string
	for _, el := range r.Elements {
		if n := el.Tags["name"]; n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Total reads the count summary of an "out count" response. The total tag is
// preferred, then the node count. Anything unparsable counts as zero.
func (r *Response) Total() int {
	if len(r.Elements) == 0 {
		return 0
	}
	tags := r.Elements[0].Tags
	raw := tags["total"]
	if raw == "" {
		raw = tags["nodes"]
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// APIError is returned for non-200 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("overpass: unexpected status %d", e.StatusCode)
}

// Option configures the client.
type Option func(*httpClient)

// WithURL overrides the interpreter URL.
func WithURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.url = u
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets requests per second and burst for outgoing queries.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Overpass client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		url:     DefaultURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(2, 3),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) URL() string { return c.url }

type rawResponse struct {
	Elements *[]Element `json:"elements"`
}

func (c *httpClient) Run(ctx context.Context, q Query) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "overpass: rate limit")
	}

	reqURL := c.url + "?" + url.Values{"data": {q.String()}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(ErrInvalidResponse, err.Error())
	}
	if raw.Elements == nil {
		return nil, ErrInvalidResponse
	}
	return &Response{Elements: *raw.Elements}, nil
}
