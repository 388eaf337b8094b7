// Package hud provides a client for the HUD User Fair Market Rent API.
package hud

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

const defaultBaseURL = "https://www.huduser.gov/hudapi/public"

// Client performs HUD FMR API operations.
type Client interface {
	// CountyFMR fetches rents for a 10-digit county entity id (SSCCC99999).
	CountyFMR(ctx context.Context, entityID string, year int) (*Rents, error)
	// StateFMR fetches per-county rents for a two-letter state code.
	StateFMR(ctx context.Context, state string, year int) ([]Rents, error)
}

// Rents holds fair market rents by bedroom count. Missing values are nil.
type Rents struct {
	Name       string
	Efficiency *float64
	OneBR      *float64
	TwoBR      *float64
	ThreeBR    *float64
	FourBR     *float64
}

// APIError is returned for non-200 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hud: unexpected status %d", e.StatusCode)
}

// YearUnavailable reports whether HUD rejected the requested year, which it
// signals with 400 or 404.
func (e *APIError) YearUnavailable() bool {
	return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusNotFound
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
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a HUD API client authenticated with a bearer token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) CountyFMR(ctx context.Context, entityID string, year int) (*Rents, error) {
	body, err := c.get(ctx, "/fmr/data/"+url.PathEscape(entityID), year)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(err, "hud: unmarshal county data")
	}

	// basicdata sits under "data" (or top level in older payloads) and is an
	// object or a list whose first entry covers the whole county.
	scope := raw
	if data, ok := raw["data"].(map[string]any); ok {
		scope = data
	}
	bd := firstObject(scope["basicdata"])
	name, _ := scope["county_name"].(string)

	return &Rents{
		Name:       name,
		Efficiency: number(bd["fmr0"]),
		OneBR:      number(bd["fmr1"]),
		TwoBR:      number(bd["fmr2"]),
		ThreeBR:    number(bd["fmr3"]),
		FourBR:     number(bd["fmr4"]),
	}, nil
}

func firstObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		if len(t) > 0 {
			if m, ok := t[0].(map[string]any); ok {
				return m
			}
		}
	}
	return map[string]any{}
}

type stateResponse struct {
	Data struct {
		Counties []map[string]any `json:"counties"`
	} `json:"data"`
}

func (c *httpClient) StateFMR(ctx context.Context, state string, year int) ([]Rents, error) {
	body, err := c.get(ctx, "/fmr/statedata/"+url.PathEscape(strings.ToUpper(state)), year)
	if err != nil {
		return nil, err
	}

	var sr stateResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, eris.Wrap(err, "hud: unmarshal state data")
	}

	out := make([]Rents, 0, len(sr.Data.Counties))
	for _, row := range sr.Data.Counties {
		name, _ := row["county_name"].(string)
		out = append(out, Rents{
			Name:       name,
			Efficiency: number(row["Efficiency"]),
			OneBR:      number(row["One-Bedroom"]),
			TwoBR:      number(row["Two-Bedroom"]),
			ThreeBR:    number(row["Three-Bedroom"]),
			FourBR:     number(row["Four-Bedroom"]),
		})
	}
	return out, nil
}

func (c *httpClient) get(ctx context.Context, path string, year int) ([]byte, error) {
	reqURL := strings.TrimRight(c.baseURL, "/") + path
	if year > 0 {
		reqURL += "?year=" + strconv.Itoa(year)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "hud: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "hud: send request %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hud: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// number coerces HUD values, which arrive as numbers or numeric strings.
func number(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
