// Package amenity answers "what is nearby" questions, preferring Google
// Places ratings and falling back to OpenStreetMap counts.
package amenity

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/liveable/internal/category"
	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/osm"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/google"
)

const (
	// DefaultRadius is used when the caller gives no radius.
	DefaultRadius = 2000

	// SourcePlaces labels results served by Google Places.
	SourcePlaces = "Google Places API"

	placesProvider = "google_places"
	maxTopRated    = 5
	maxSamples     = 5

	noteMissingKey = "Google Places key missing. Using OpenStreetMap counts (no ratings)."
)

// Router picks a provider per category.
type Router struct {
	geocoder location.Geocoder
	places   google.Client
	osm      *osm.Engine
}

// NewRouter creates a Router. A nil places client means no Google Places key
// is configured and every category is served from OpenStreetMap.
func NewRouter(g location.Geocoder, places google.Client, engine *osm.Engine) *Router {
	return &Router{geocoder: g, places: places, osm: engine}
}

// Search counts amenities of a category around zip. Categories with a Places
// type are answered with ratings when a key is configured; the rest go to
// OpenStreetMap with a note explaining the missing ratings.
func (r *Router) Search(ctx context.Context, zip, raw string, radius int) (model.AmenityQueryResult, error) {
	if err := location.ValidateZip(zip); err != nil {
		return model.AmenityQueryResult{}, err
	}
	if radius <= 0 {
		radius = DefaultRadius
	}

	canonical := category.Places.Resolve(raw)
	placeType, ok := category.PlaceType(canonical)
	if !canonical.Known() || !ok {
		name := string(canonical)
		if !canonical.Known() {
			name = category.Normalize(raw)
		}
		return r.fallback(ctx, zip, raw, radius,
			fmt.Sprintf("'%s' not supported by Google Places. Counts from OpenStreetMap (no ratings).", name))
	}
	if r.places == nil {
		return r.fallback(ctx, zip, raw, radius, noteMissingKey)
	}

	loc, err := r.geocoder.Geocode(ctx, zip)
	if err != nil {
		return model.AmenityQueryResult{}, err
	}

	resp, err := r.places.SearchNearby(ctx, google.NearbyRequest{
		IncludedTypes: []string{placeType},
		Latitude:      loc.Latitude,
		Longitude:     loc.Longitude,
		RadiusMeters:  radius,
	})
	if err != nil {
		return model.AmenityQueryResult{}, placesFailure(err).With(result.Details{
			"zip_code": zip,
			"category": string(canonical),
		})
	}

	out := Summarize(resp.Places)
	out.ZipCode = zip
	out.Category = string(canonical)
	out.RadiusMeters = radius
	out.Source = SourcePlaces
	out.Center = centerOf(loc)
	return out, nil
}

// SearchOSM answers from OpenStreetMap only.
func (r *Router) SearchOSM(ctx context.Context, zip, raw string, radius int) (model.AmenityQueryResult, error) {
	return r.fallback(ctx, zip, raw, radius, "")
}

// fallback hands the canonical name to the engine when the Places table knows
// the input, so Places-only aliases such as "coffee" still resolve.
func (r *Router) fallback(ctx context.Context, zip, raw string, radius int, note string) (model.AmenityQueryResult, error) {
	term := raw
	if c := category.Places.Resolve(raw); c.Known() && category.OSM.Has(c) {
		term = string(c)
	}
	if err := location.ValidateZip(zip); err != nil {
		return model.AmenityQueryResult{}, err
	}
	if radius <= 0 {
		radius = osm.DefaultRadius
	}
	loc, err := r.geocoder.Geocode(ctx, zip)
	if err != nil {
		return model.AmenityQueryResult{}, err
	}
	res, err := r.osm.Search(ctx, loc.Latitude, loc.Longitude, term, radius)
	if err != nil {
		zap.L().Warn("amenity: openstreetmap search failed",
			zap.String("zip", zip), zap.String("category", raw), zap.Error(err))
		return model.AmenityQueryResult{}, err
	}
	res.ZipCode = zip
	res.Center = centerOf(loc)
	if note != "" {
		res.Note = note
	}
	return *res, nil
}

// Summarize computes the count, sample names, average rating and top five of
// a Places result. Missing ratings sort as 0 but stay nil in the output.
func Summarize(places []google.Place) model.AmenityQueryResult {
	out := model.AmenityQueryResult{
		Count:       len(places),
		SampleNames: []string{},
		TopRated:    []model.RatedPlace{},
	}

	var sum float64
	var rated int
	for _, p := range places {
		if p.Rating != nil {
			sum += *p.Rating
			rated++
		}
		if len(out.SampleNames) < maxSamples && p.DisplayName.Text != "" {
			out.SampleNames = append(out.SampleNames, p.DisplayName.Text)
		}
	}
	if rated > 0 {
		avg := sum / float64(rated)
		out.AvgRating = &avg
	}

	ranked := append([]google.Place(nil), places...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := orZero(ranked[i].Rating), orZero(ranked[j].Rating)
		if ri != rj {
			return ri > rj
		}
		return countOrZero(ranked[i].UserRatingCount) > countOrZero(ranked[j].UserRatingCount)
	})
	if len(ranked) > maxTopRated {
		ranked = ranked[:maxTopRated]
	}
	for _, p := range ranked {
		out.TopRated = append(out.TopRated, model.RatedPlace{
			Name:        p.DisplayName.Text,
			Rating:      p.Rating,
			RatingCount: p.UserRatingCount,
			Address:     p.FormattedAddress,
		})
	}
	return out
}

func orZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func countOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func centerOf(loc model.Location) *model.Center {
	c := loc.Center()
	c.City = loc.City
	c.State = loc.State
	return &c
}

func placesFailure(err error) *result.Failure {
	var apiErr *google.APIError
	if errors.As(err, &apiErr) {
		return result.HTTPFailure(result.KindPlacesRequestFailed, "", placesProvider, apiErr.StatusCode, apiErr.Body)
	}
	return result.Wrap(err, result.KindPlacesRequestFailed, result.Details{"provider": placesProvider, "transient": true})
}
