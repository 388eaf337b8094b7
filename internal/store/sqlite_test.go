package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/liveable/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func archived(kind string, created time.Time, zips ...string) *model.ArchivedReport {
	return &model.ArchivedReport{
		Kind:      kind,
		ZipCodes:  zips,
		Payload:   json.RawMessage(`{"zip_code":"` + zips[0] + `"}`),
		CreatedAt: created,
	}
}

func TestSQLite_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r := archived("report", time.Time{}, "94110")
	require.NoError(t, st.SaveReport(ctx, r))
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := st.GetReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "report", got.Kind)
	assert.Equal(t, []string{"94110"}, got.ZipCodes)
	assert.JSONEq(t, `{"zip_code":"94110"}`, string(got.Payload))
}

func TestSQLite_GetReport_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetReport(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_SaveReport_RejectsEmptyPayload(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.SaveReport(context.Background(), &model.ArchivedReport{Kind: "report"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty report payload")
	assert.Error(t, st.SaveReport(context.Background(), nil))
}

func TestSQLite_ListReports(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, st.SaveReport(ctx, archived("report", base, "94110")))
	require.NoError(t, st.SaveReport(ctx, archived("report", base.Add(time.Hour), "10001")))
	require.NoError(t, st.SaveReport(ctx, archived("comparison", base.Add(2*time.Hour), "10001", "94110")))
	require.NoError(t, st.SaveReport(ctx, archived("report", base.Add(3*time.Hour), "941101")))

	all, err := st.ListReports(ctx, ReportFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"941101"}, all[0].ZipCodes)
	assert.Equal(t, []string{"94110"}, all[3].ZipCodes)

	byZip, err := st.ListReports(ctx, ReportFilter{ZipCode: "94110"})
	require.NoError(t, err)
	require.Len(t, byZip, 2)
	assert.Equal(t, "comparison", byZip[0].Kind)
	assert.Equal(t, []string{"10001", "94110"}, byZip[0].ZipCodes)

	byKind, err := st.ListReports(ctx, ReportFilter{Kind: "report", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, []string{"10001"}, byKind[0].ZipCodes)
}

func TestSQLite_ListReports_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	reports, err := st.ListReports(context.Background(), ReportFilter{ZipCode: "00501"})
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestSQLite_ImportReports_SkipsExisting(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	existing := archived("report", time.Time{}, "94110")
	require.NoError(t, st.SaveReport(ctx, existing))

	dup := *existing
	dup.Payload = json.RawMessage(`{"zip_code":"changed"}`)
	fresh := *archived("report", time.Time{}, "10001")

	n, err := st.ImportReports(ctx, []model.ArchivedReport{dup, fresh})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := st.GetReport(ctx, existing.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zip_code":"94110"}`, string(got.Payload))

	all, err := st.ListReports(ctx, ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_ImplementsStore(t *testing.T) {
	var _ Store = newTestSQLiteStore(t)
}
