// Package store persists produced reports. The archive is write-only from the
// lookup path: nothing reads it back to answer a lookup.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/liveable/internal/model"
)

// DefaultListLimit caps ListReports when the filter gives no limit.
const DefaultListLimit = 20

// ErrNotFound is returned by GetReport for an unknown id.
var ErrNotFound = eris.New("store: report not found")

// ReportFilter specifies criteria for listing archived reports.
type ReportFilter struct {
	ZipCode string `json:"zip_code,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Store defines the report archive.
type Store interface {
	SaveReport(ctx context.Context, r *model.ArchivedReport) error
	GetReport(ctx context.Context, id string) (*model.ArchivedReport, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]model.ArchivedReport, error)

	// ImportReports writes reports exported from another archive. Existing
	// ids are left untouched.
	ImportReports(ctx context.Context, reports []model.ArchivedReport) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// prepare fills the id and timestamp of a report about to be saved.
func prepare(r *model.ArchivedReport) error {
	if r == nil {
		return eris.New("store: nil report")
	}
	if len(r.Payload) == 0 {
		return eris.New("store: empty report payload")
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

func joinZips(zips []string) string {
	return strings.Join(zips, ",")
}

func splitZips(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// zipPattern matches one ZIP inside a comma-joined list padded with commas.
func zipPattern(zip string) string {
	return "%," + zip + ",%"
}

func limitOf(filter ReportFilter) int {
	if filter.Limit <= 0 {
		return DefaultListLimit
	}
	return filter.Limit
}
