// Package geocode resolves ZIP codes to places (Zippopotam) and coordinates to
// federal geographies (Census Geocoder).
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultZipBaseURL    = "https://api.zippopotam.us"
	defaultCensusBaseURL = "https://geocoding.geo.census.gov/geocoder"
)

// ZipDirectory looks up the places registered for a ZIP code.
type ZipDirectory interface {
	LookupZip(ctx context.Context, zip string) (*ZipPlace, error)
}

// GeographyLookup reverse-geocodes a coordinate into census geographies.
type GeographyLookup interface {
	Geographies(ctx context.Context, lat, lon float64) (*Geographies, error)
}

// Client combines both lookups.
type Client interface {
	ZipDirectory
	GeographyLookup
}

// APIError is returned when a geocoding service responds with a non-200 status.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("geocode: %s returned status %d", e.Service, e.StatusCode)
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithZipBaseURL overrides the Zippopotam base URL.
func WithZipBaseURL(url string) Option {
	return func(g *geocoder) {
		g.zipBaseURL = url
	}
}

// WithCensusBaseURL overrides the Census Geocoder base URL.
func WithCensusBaseURL(url string) Option {
	return func(g *geocoder) {
		g.censusBaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client for both services.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.zipHTTP = hc
		g.censusHTTP = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit for Census calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type geocoder struct {
	zipBaseURL    string
	censusBaseURL string
	zipHTTP       *http.Client
	censusHTTP    *http.Client
	limiter       *rate.Limiter
}

// NewClient creates a geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		zipBaseURL:    defaultZipBaseURL,
		censusBaseURL: defaultCensusBaseURL,
		zipHTTP:       &http.Client{Timeout: 10 * time.Second},
		censusHTTP:    &http.Client{Timeout: 15 * time.Second},
		limiter:       rate.NewLimiter(50, 50), // Census default: 50 req/s
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
