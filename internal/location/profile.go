package location

import (
	"context"
	"errors"

	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/geocode"
)

const (
	geographyProvider = "census_geocoder"
	profileSource     = "Zippopotam + US Census Geocoder"
)

// Profiler resolves the full geography profile of a ZIP code.
type Profiler interface {
	Geocoder
	Profile(ctx context.Context, zip string) (model.GeoProfile, error)
}

// ProfileResolver reverse-geocodes a ZIP's coordinates into county, tract and
// CBSA identifiers.
type ProfileResolver struct {
	geocoder Geocoder
	lookup   geocode.GeographyLookup
}

// NewProfileResolver creates a ProfileResolver.
func NewProfileResolver(g Geocoder, lookup geocode.GeographyLookup) *ProfileResolver {
	return &ProfileResolver{geocoder: g, lookup: lookup}
}

// Geocode delegates to the underlying geocoder.
func (r *ProfileResolver) Geocode(ctx context.Context, zip string) (model.Location, error) {
	return r.geocoder.Geocode(ctx, zip)
}

// Profile resolves the Location, then the first county, tract and metro (or
// micro) area containing it. Points on a boundary take whichever area the
// lookup lists first. Missing layers leave nil fields. When only the
// geography lookup fails, the returned profile still carries the Location.
func (r *ProfileResolver) Profile(ctx context.Context, zip string) (model.GeoProfile, error) {
	loc, err := r.geocoder.Geocode(ctx, zip)
	if err != nil {
		return model.GeoProfile{}, err
	}

	geos, err := r.lookup.Geographies(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		var apiErr *geocode.APIError
		if errors.As(err, &apiErr) {
			return model.GeoProfile{Location: loc}, result.HTTPFailure(result.KindGeoProfileFailed, "", geographyProvider, apiErr.StatusCode, apiErr.Body).
				With(result.Details{"zip_code": zip})
		}
		return model.GeoProfile{Location: loc}, result.Wrap(err, result.KindGeoProfileFailed, result.Details{
			"zip_code":  zip,
			"provider":  geographyProvider,
			"transient": true,
		})
	}

	p := model.GeoProfile{Location: loc, Source: profileSource}
	if county := geos.First(geocode.LayerCounties); county != nil {
		p.CountyName = county.Get("NAME")
		p.CountyFIPS = county.Get("COUNTY")
		p.StateFIPS = county.Get("STATE")
	}
	if tract := geos.First(geocode.LayerTracts); tract != nil {
		p.TractGEOID = tract.Get("GEOID")
		p.TractName = tract.Get("NAME")
	}
	cbsa := geos.First(geocode.LayerMetroAreas)
	if cbsa == nil {
		cbsa = geos.First(geocode.LayerMicropolitan)
	}
	if cbsa != nil {
		p.CBSACode = cbsa.Get("CBSA")
		p.CBSATitle = cbsa.Get("NAME")
	}
	return p, nil
}
