// Package walkability resolves Walk Score, Transit Score and Bike Score.
package walkability

import (
	"context"
	"errors"
	"fmt"

	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/osm"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/walkscore"
)

const provider = "walkscore"

// Resolver looks up scores for a coordinate. A nil client means no Walk Score
// key is configured.
type Resolver struct {
	client   walkscore.Client
	geocoder location.Geocoder
}

// NewResolver creates a Resolver. geocoder is only needed by ForZip.
func NewResolver(client walkscore.Client, geocoder location.Geocoder) *Resolver {
	return &Resolver{client: client, geocoder: geocoder}
}

// Resolve returns the scores at lat/lon.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64, address string) (model.WalkScore, error) {
	if r.client == nil {
		return model.WalkScore{}, result.MissingKey("", provider, "WALKSCORE_API_KEY")
	}
	if err := osm.ValidateCoordinates(lat, lon); err != nil {
		return model.WalkScore{}, err
	}

	resp, err := r.client.Score(ctx, lat, lon, address)
	if err != nil {
		var apiErr *walkscore.APIError
		if errors.As(err, &apiErr) {
			return model.WalkScore{}, result.HTTPFailure(result.KindWalkScoreRequestFailed, "", provider, apiErr.StatusCode, apiErr.Body)
		}
		return model.WalkScore{}, result.Wrap(err, result.KindWalkScoreRequestFailed, result.Details{
			"provider":  provider,
			"transient": true,
		})
	}
	if resp.Status != walkscore.StatusOK {
		return model.WalkScore{}, result.New(result.KindWalkScoreNoData, result.Details{
			"provider":         provider,
			"walkscore_status": resp.Status,
		})
	}

	return model.WalkScore{
		WalkScore:    resp.WalkScore,
		Description:  resp.Description,
		TransitScore: resp.TransitScore(),
		BikeScore:    resp.BikeScore(),
	}, nil
}

// ForZip geocodes zip and scores its center, using "City, ST zip" as the
// address hint.
func (r *Resolver) ForZip(ctx context.Context, zip string) (model.WalkScore, error) {
	if r.client == nil {
		return model.WalkScore{}, result.MissingKey("", provider, "WALKSCORE_API_KEY")
	}
	loc, err := r.geocoder.Geocode(ctx, zip)
	if err != nil {
		return model.WalkScore{}, err
	}
	return r.Resolve(ctx, loc.Latitude, loc.Longitude, fmt.Sprintf("%s, %s %s", loc.City, loc.State, loc.ZipCode))
}
