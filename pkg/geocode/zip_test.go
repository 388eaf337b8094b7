package geocode

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupZip_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/us/94110", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"post code": "94110",
			"country": "United States",
			"places": [{
				"place name": "San Francisco",
				"longitude": "-122.4153",
				"state": "California",
				"state abbreviation": "CA",
				"latitude": "37.7509"
			}]
		}`)
	}))
	defer srv.Close()

	g := NewClient(WithHTTPClient(redirectClient(srv.URL)))

	place, err := g.LookupZip(context.Background(), "94110")
	require.NoError(t, err)
	assert.Equal(t, "94110", place.ZipCode)
	assert.Equal(t, "San Francisco", place.PlaceName)
	assert.Equal(t, "CA", place.StateAbbr)
	assert.InDelta(t, 37.7509, place.Latitude, 0.0001)
	assert.InDelta(t, -122.4153, place.Longitude, 0.0001)
}

func TestLookupZip_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	g := NewClient(WithZipBaseURL(srv.URL))

	_, err := g.LookupZip(context.Background(), "00000")
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "zippopotam", apiErr.Service)
}

func TestLookupZip_NoPlaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"post code": "99999", "places": []}`)
	}))
	defer srv.Close()

	g := NewClient(WithZipBaseURL(srv.URL))

	_, err := g.LookupZip(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrNoPlaces)
}

func TestLookupZip_BadLatitude(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"places": [{"place name": "X", "latitude": "north", "longitude": "1"}]}`)
	}))
	defer srv.Close()

	g := NewClient(WithZipBaseURL(srv.URL))

	_, err := g.LookupZip(context.Background(), "12345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse latitude")
}
