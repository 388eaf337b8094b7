// Package demographics resolves ACS 5-year demographics for a ZIP code, with
// a county fallback for ZIPs that have no tabulation area.
package demographics

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/census"
)

const provider = "census_acs"

// ProfileSource supplies the geography used for the county fallback.
type ProfileSource interface {
	Profile(ctx context.Context, zip string) (model.GeoProfile, error)
}

// Resolver fetches and derives demographics. A nil client means no Census key
// is configured.
type Resolver struct {
	client   census.Client
	profiles ProfileSource
	year     int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithYear selects the ACS vintage.
func WithYear(year int) Option {
	return func(r *Resolver) {
		if year > 0 {
			r.year = year
		}
	}
}

// NewResolver creates a Resolver.
func NewResolver(client census.Client, profiles ProfileSource, opts ...Option) *Resolver {
	r := &Resolver{client: client, profiles: profiles, year: census.DefaultYear}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the ZCTA record, or the county record when the ZCTA has no
// data.
func (r *Resolver) Resolve(ctx context.Context, zip string) (model.DemographicsRecord, error) {
	if r.client == nil {
		return model.DemographicsRecord{}, result.MissingKey("", provider, "CENSUS_API_KEY")
	}
	if err := location.ValidateZip(zip); err != nil {
		return model.DemographicsRecord{}, err
	}

	tbl, err := r.query(ctx, fmt.Sprintf("zip code tabulation area:%s", zip), "")
	if err != nil {
		return model.DemographicsRecord{}, err
	}
	if !tbl.Empty() {
		return Derive(zip, tbl.Record()), nil
	}

	zap.L().Info("demographics: no ZCTA data, falling back to county", zap.String("zip", zip))
	return r.countyFallback(ctx, zip)
}

func (r *Resolver) countyFallback(ctx context.Context, zip string) (model.DemographicsRecord, error) {
	noData := result.New(result.KindCensusNoData, result.Details{"zip_code": zip, "provider": provider})

	if r.profiles == nil {
		return model.DemographicsRecord{}, noData
	}
	profile, err := r.profiles.Profile(ctx, zip)
	if err != nil || profile.StateFIPS == nil || profile.CountyFIPS == nil {
		if err != nil {
			zap.L().Warn("demographics: profile for county fallback failed", zap.String("zip", zip), zap.Error(err))
		}
		return model.DemographicsRecord{}, noData
	}

	state, county := *profile.StateFIPS, *profile.CountyFIPS
	tbl, err := r.query(ctx, "county:"+county, "state:"+state)
	if err != nil {
		if f, ok := result.As(err); ok {
			return model.DemographicsRecord{}, f.With(result.Details{"fallback": "county"})
		}
		return model.DemographicsRecord{}, err
	}
	if tbl.Empty() {
		return model.DemographicsRecord{}, noData.With(result.Details{"fallback": "county"})
	}

	rec := Derive(zip, tbl.Record())
	rec.Geography = model.GeographyCounty
	rec.GeographyFIPS = state + county
	return rec, nil
}

func (r *Resolver) query(ctx context.Context, forClause, inClause string) (*census.Table, error) {
	tbl, err := r.client.Query(ctx, census.Query{
		Year: r.year,
		Get:  Variables(),
		For:  forClause,
		In:   inClause,
	})
	if err == nil {
		return tbl, nil
	}

	var apiErr *census.APIError
	switch {
	case errors.As(err, &apiErr):
		return nil, result.HTTPFailure(result.KindCensusRequestFailed, "", provider, apiErr.StatusCode, apiErr.Body)
	case errors.Is(err, census.ErrInvalidResponse):
		return nil, result.Wrap(err, result.KindCensusInvalid, result.Details{"provider": provider})
	}
	return nil, result.Wrap(err, result.KindCensusRequestFailed, result.Details{"provider": provider, "transient": true})
}
