// Package developments searches a configured open-data permit endpoint for
// new construction near a ZIP code.
package developments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/permits"
)

const (
	provider = "permits"

	// MaxRecords caps the developments returned.
	MaxRecords = 10
)

// Field aliases, tried in order. The first non-empty value wins.
var (
	nameFields        = []string{"project_name", "name", "description"}
	typeFields        = []string{"permit_type", "type", "category"}
	statusFields      = []string{"status", "permit_status"}
	completionFields  = []string{"completion_date", "estimated_completion"}
	descriptionFields = []string{"description", "details", "scope"}
	addressFields     = []string{"address", "location", "site_address"}
)

// Resolver searches permits. A nil client means no endpoint is configured.
type Resolver struct {
	client permits.Client
}

// NewResolver creates a Resolver.
func NewResolver(client permits.Client) *Resolver {
	return &Resolver{client: client}
}

// Search returns up to MaxRecords development records for zip.
func (r *Resolver) Search(ctx context.Context, zip, city string) (model.Developments, error) {
	if r.client == nil {
		return model.Developments{}, result.New(result.KindDevelopmentsNotConfig, result.Details{
			"message": "Set DEV_PERMITS_BASE_URL to a Socrata/ArcGIS open data endpoint.",
			"env":     "DEV_PERMITS_BASE_URL",
		})
	}
	if err := location.ValidateZip(zip); err != nil {
		return model.Developments{}, err
	}
	city = strings.TrimSpace(city)

	records, err := r.client.Search(ctx, zip, city)
	if err != nil {
		var apiErr *permits.APIError
		switch {
		case errors.As(err, &apiErr):
			return model.Developments{}, result.HTTPFailure(result.KindDevelopmentsFailed, "", provider, apiErr.StatusCode, apiErr.Body)
		case errors.Is(err, permits.ErrNotArray):
			return model.Developments{}, result.Wrap(err, result.KindDevelopmentsInvalid, result.Details{"provider": provider})
		default:
			return model.Developments{}, result.Wrap(err, result.KindDevelopmentsFailed, result.Details{
				"provider":  provider,
				"transient": true,
			})
		}
	}

	if len(records) > MaxRecords {
		records = records[:MaxRecords]
	}
	out := model.Developments{
		ZipCode:      zip,
		Developments: make([]model.Development, 0, len(records)),
		Source:       r.client.Source(),
	}
	if city != "" {
		out.City = &city
	}
	for _, rec := range records {
		name := "Unknown"
		if n := field(rec, nameFields); n != nil {
			name = *n
		}
		out.Developments = append(out.Developments, model.Development{
			Name:                name,
			Type:                field(rec, typeFields),
			Status:              field(rec, statusFields),
			EstimatedCompletion: field(rec, completionFields),
			Description:         field(rec, descriptionFields),
			Address:             field(rec, addressFields),
		})
	}
	return out, nil
}

// field returns the first alias with a non-empty value, rendered as text.
// Nested objects (e.g. Socrata location columns) are skipped.
func field(rec map[string]any, aliases []string) *string {
	for _, key := range aliases {
		var s string
		switch v := rec[key].(type) {
		case string:
			s = strings.TrimSpace(v)
		case float64:
			s = fmt.Sprintf("%g", v)
		case bool:
			if v {
				s = "true"
			}
		}
		if s != "" {
			return &s
		}
	}
	return nil
}
