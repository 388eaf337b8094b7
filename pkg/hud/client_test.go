package hud

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountyFMR_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fmr/data/0607599999", r.URL.Path)
		assert.Equal(t, "2025", r.URL.Query().Get("year"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data": {"county_name": "San Francisco County", "basicdata": {
			"fmr0": 2000, "fmr1": 2500, "fmr2": "3,100", "fmr3": 3900, "fmr4": null
		}}}`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	r, err := c.CountyFMR(context.Background(), "0607599999", 2025)
	require.NoError(t, err)
	assert.Equal(t, "San Francisco County", r.Name)
	assert.InDelta(t, 2000, *r.Efficiency, 0.1)
	assert.InDelta(t, 3100, *r.TwoBR, 0.1)
	assert.Nil(t, r.FourBR)
}

func TestCountyFMR_YearUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	_, err := c.CountyFMR(context.Background(), "0607599999", 2030)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.YearUnavailable())
}

func TestStateFMR_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fmr/statedata/CA", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": {"counties": [
			{"county_name": "A", "Efficiency": 1000, "One-Bedroom": 1100, "Two-Bedroom": 1400, "Three-Bedroom": 1800, "Four-Bedroom": 2100},
			{"county_name": "B", "Two-Bedroom": 1600}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	rows, err := c.StateFMR(context.Background(), "ca", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.InDelta(t, 1400, *rows[0].TwoBR, 0.1)
	assert.Nil(t, rows[1].OneBR)
}

func TestAPIError_YearUnavailable(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 400}).YearUnavailable())
	assert.True(t, (&APIError{StatusCode: 404}).YearUnavailable())
	assert.False(t, (&APIError{StatusCode: 500}).YearUnavailable())
}

func TestCountyFMR_BasicDataList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"basicdata": [{"zip_code": "MSA level", "fmr2": 1500}]}`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	r, err := c.CountyFMR(context.Background(), "0801499999", 2024)
	require.NoError(t, err)
	assert.InDelta(t, 1500, *r.TwoBR, 0.1)
	assert.Nil(t, r.OneBR)
}
