// Package location resolves ZIP codes to coordinates and federal geography
// identifiers.
package location

import (
	"context"
	"errors"
	"regexp"

	"go.uber.org/zap"

	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/geocode"
)

const zipProvider = "zippopotam"

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// ValidateZip fails with invalid_zip unless zip is exactly five digits.
func ValidateZip(zip string) error {
	if !zipPattern.MatchString(zip) {
		return result.New(result.KindInvalidZip, result.Details{"zip_code": zip})
	}
	return nil
}

// Geocoder resolves a ZIP code to a Location.
type Geocoder interface {
	Geocode(ctx context.Context, zip string) (model.Location, error)
}

// ZipGeocoder geocodes through a ZIP directory.
type ZipGeocoder struct {
	dir geocode.ZipDirectory
}

// NewZipGeocoder creates a ZipGeocoder.
func NewZipGeocoder(dir geocode.ZipDirectory) *ZipGeocoder {
	return &ZipGeocoder{dir: dir}
}

// Geocode validates zip before any network access, then takes the first place
// the directory lists.
func (g *ZipGeocoder) Geocode(ctx context.Context, zip string) (model.Location, error) {
	if err := ValidateZip(zip); err != nil {
		return model.Location{}, err
	}

	place, err := g.dir.LookupZip(ctx, zip)
	if err != nil {
		zap.L().Warn("location: zip lookup failed", zap.String("zip", zip), zap.Error(err))
		return model.Location{}, geocodeFailure(zip, err)
	}

	return model.Location{
		ZipCode:   zip,
		City:      place.PlaceName,
		State:     place.StateAbbr,
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
	}, nil
}

func geocodeFailure(zip string, err error) error {
	var apiErr *geocode.APIError
	if errors.As(err, &apiErr) {
		return result.HTTPFailure(result.KindGeocodeFailed, "", zipProvider, apiErr.StatusCode, apiErr.Body).
			With(result.Details{"zip_code": zip})
	}
	return result.Wrap(err, result.KindGeocodeFailed, result.Details{
		"zip_code":  zip,
		"provider":  zipProvider,
		"transient": !errors.Is(err, geocode.ErrNoPlaces),
	})
}
