package developments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/permits"
)

func newServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var where string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		where = r.URL.Query().Get("$where")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &where
}

func TestSearch(t *testing.T) {
	srv, where := newServer(t, http.StatusOK, `[
		{"project_name": "Mission Lofts", "permit_type": "New Construction", "status": "issued",
		 "completion_date": "2026-05-01", "address": "1 Main St", "location": {"lat": 1}},
		{"description": "Add ADU", "permit_status": "filed", "location": "22 Oak St"},
		{"permit_type": "Demolition"}
	]`)
	r := NewResolver(permits.NewClient(srv.URL, permits.WithQuery("zip_code='{zip_code}' AND city='{city}'")))

	out, err := r.Search(context.Background(), "94110", " San Francisco ")
	require.NoError(t, err)
	assert.Equal(t, "zip_code='94110' AND city='San Francisco'", *where)
	assert.Equal(t, srv.URL, out.Source)
	require.NotNil(t, out.City)
	assert.Equal(t, "San Francisco", *out.City)
	assert.Nil(t, out.TrendSummary)

	require.Len(t, out.Developments, 3)
	first := out.Developments[0]
	assert.Equal(t, "Mission Lofts", first.Name)
	assert.Equal(t, "New Construction", *first.Type)
	assert.Equal(t, "2026-05-01", *first.EstimatedCompletion)
	assert.Equal(t, "1 Main St", *first.Address)
	assert.Nil(t, first.Description)

	second := out.Developments[1]
	assert.Equal(t, "Add ADU", second.Name)
	assert.Equal(t, "filed", *second.Status)
	assert.Equal(t, "22 Oak St", *second.Address)

	assert.Equal(t, "Unknown", out.Developments[2].Name)
}

func TestSearch_CapsRecords(t *testing.T) {
	body := "["
	for i := 0; i < 15; i++ {
		if i > 0 {
			body += ","
		}
		body += `{"name": "p"}`
	}
	body += "]"
	srv, _ := newServer(t, http.StatusOK, body)

	out, err := NewResolver(permits.NewClient(srv.URL, permits.WithLimit(50))).Search(context.Background(), "94110", "")
	require.NoError(t, err)
	assert.Len(t, out.Developments, MaxRecords)
	assert.Nil(t, out.City)
}

func TestSearch_Failures(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		_, err := NewResolver(nil).Search(context.Background(), "94110", "")
		f, ok := result.As(err)
		require.True(t, ok)
		assert.Equal(t, result.KindDevelopmentsNotConfig, f.Kind)
		assert.Equal(t, result.FamilyConfiguration, f.Family())
	})

	t.Run("upstream error", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusBadGateway, "oops")
		_, err := NewResolver(permits.NewClient(srv.URL)).Search(context.Background(), "94110", "")
		f, ok := result.As(err)
		require.True(t, ok)
		assert.Equal(t, result.KindDevelopmentsFailed, f.Kind)
		assert.Equal(t, http.StatusBadGateway, f.Status())
		assert.Equal(t, "oops", f.Details["body"])
	})

	t.Run("not an array", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusOK, `{"error": "bad query"}`)
		_, err := NewResolver(permits.NewClient(srv.URL)).Search(context.Background(), "94110", "")
		assert.True(t, result.IsKind(err, result.KindDevelopmentsInvalid))
	})

	t.Run("invalid zip", func(t *testing.T) {
		_, err := NewResolver(permits.NewClient("http://unused.invalid")).Search(context.Background(), "9411", "")
		assert.True(t, result.IsKind(err, result.KindInvalidZip))
	})
}
