package permits

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_WithTemplate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "10", q.Get("$limit"))
		assert.Equal(t, "zip = '94110' AND city = 'San Francisco'", q.Get("$where"))
		_, _ = w.Write([]byte(`[{"project_name": "Tower A"}, {"name": "Annex"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithQuery("zip = '{zip_code}' AND city = '{city}'"))
	recs, err := c.Search(context.Background(), "94110", "San Francisco")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, srv.URL, c.Source())
}

func TestSearch_NoTemplate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("$where"))
		assert.Equal(t, "3", r.URL.Query().Get("$limit"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	recs, err := NewClient(srv.URL, WithLimit(3)).Search(context.Background(), "94110", "")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSearch_NotArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": "bad query"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Search(context.Background(), "94110", "")
	assert.ErrorIs(t, err, ErrNotArray)
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Search(context.Background(), "94110", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "boom", apiErr.Body)
}

func TestWhere(t *testing.T) {
	assert.Equal(t, "z=1 c=", Where("z={zip_code} c={city}", "1", ""))
}
