package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL  = "https://places.googleapis.com/v1"
	nearbyFieldMask = "places.displayName,places.rating,places.userRatingCount,places.formattedAddress"

	// MaxResultCount is the largest page the Nearby Search endpoint returns.
	MaxResultCount = 20
)

// Client performs Google Places API operations.
type Client interface {
	SearchNearby(ctx context.Context, req NearbyRequest) (*NearbyResponse, error)
}

// NearbyRequest describes a circular Nearby Search.
type NearbyRequest struct {
	IncludedTypes []string
	Latitude      float64
	Longitude     float64
	RadiusMeters  int
}

// NearbyResponse is the response from Places Nearby Search.
type NearbyResponse struct {
	Places []Place `json:"places"`
}

// Place represents a place returned by the API. Rating fields are absent for
// places nobody has reviewed.
type Place struct {
	DisplayName      DisplayName `json:"displayName"`
	Rating           *float64    `json:"rating,omitempty"`
	UserRatingCount  *int        `json:"userRatingCount,omitempty"`
	FormattedAddress string      `json:"formattedAddress,omitempty"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// APIError is returned for non-200 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("google: unexpected status %d", e.StatusCode)
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

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type nearbyRequest struct {
	IncludedTypes       []string            `json:"includedTypes"`
	MaxResultCount      int                 `json:"maxResultCount"`
	LocationRestriction locationRestriction `json:"locationRestriction"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng `json:"center"`
	Radius int    `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c *httpClient) SearchNearby(ctx context.Context, in NearbyRequest) (*NearbyResponse, error) {
	body, err := json.Marshal(nearbyRequest{
		IncludedTypes:  in.IncludedTypes,
		MaxResultCount: MaxResultCount,
		LocationRestriction: locationRestriction{Circle: circle{
			Center: latLng{Latitude: in.Latitude, Longitude: in.Longitude},
			Radius: in.RadiusMeters,
		}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "google: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchNearby", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", nearbyFieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result NearbyResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal response")
	}

	return &result, nil
}
