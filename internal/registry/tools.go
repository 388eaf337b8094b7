package registry

import (
	"context"

	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/osm"
	"github.com/sells-group/liveable/internal/report"
	"github.com/sells-group/liveable/internal/result"
)

// FMRSource resolves HUD fair market rents.
type FMRSource interface {
	Resolve(ctx context.Context, zip string, year int) (model.FairMarketRent, error)
}

// MarketSource returns trimmed RentCast payloads.
type MarketSource interface {
	Summary(ctx context.Context, zip string) (model.MarketSummary, error)
	Listings(ctx context.Context, zip string, limit int) (model.ListingSummaries, error)
}

// AmenitySource answers amenity searches by ZIP.
type AmenitySource interface {
	Search(ctx context.Context, zip, category string, radius int) (model.AmenityQueryResult, error)
	SearchOSM(ctx context.Context, zip, category string, radius int) (model.AmenityQueryResult, error)
}

// OverpassSource answers amenity searches by coordinate.
type OverpassSource interface {
	Search(ctx context.Context, lat, lon float64, category string, radius int) (*model.AmenityQueryResult, error)
}

// WalkabilitySource scores coordinates and ZIP centers.
type WalkabilitySource interface {
	Resolve(ctx context.Context, lat, lon float64, address string) (model.WalkScore, error)
	ForZip(ctx context.Context, zip string) (model.WalkScore, error)
}

// DevelopmentsSource searches permit records.
type DevelopmentsSource interface {
	Search(ctx context.Context, zip, city string) (model.Developments, error)
}

// ReportSource builds reports and comparisons.
type ReportSource interface {
	Build(ctx context.Context, zip string) (*report.Report, error)
	Compare(ctx context.Context, zipA, zipB string) *report.Comparison
}

// Deps are the resolvers behind the tools.
type Deps struct {
	Profiles     location.Profiler
	Demographics report.DemographicsSource
	FMR          FMRSource
	Market       MarketSource
	Housing      report.HousingSource
	Amenities    AmenitySource
	Overpass     OverpassSource
	Noise        report.NoiseSource
	Walkability  WalkabilitySource
	Developments DevelopmentsSource
	Reports      ReportSource
}

var (
	zipParam    = Param{Name: "zip_code", Type: "string", Required: true, Description: "5-digit US ZIP code"}
	yearParam   = Param{Name: "year", Type: "integer", Description: "data vintage"}
	radiusParam = Param{Name: "radius_meters", Type: "integer", Description: "search radius in meters"}
	catParam    = Param{Name: "category", Type: "string", Required: true, Description: "amenity category, free text"}
	latParam    = Param{Name: "lat", Type: "number", Required: true}
	lonParam    = Param{Name: "lon", Type: "number", Required: true}
)

// New creates a registry with every tool wired to d.
func New(d Deps) *Registry {
	r := NewRegistry()

	r.Register(Tool{
		Name:        "geocode_zip",
		Description: "Resolve a ZIP code to city, state and coordinates.",
		Params:      []Param{zipParam},
		Fallback:    result.KindGeocodeFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Profiles.Geocode(ctx, a.String("zip_code"))
		},
	})
	r.Register(Tool{
		Name:        "get_geo_profile",
		Description: "Resolve county, census tract and CBSA identifiers for a ZIP code.",
		Params:      []Param{zipParam},
		Fallback:    result.KindGeoProfileFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Profiles.Profile(ctx, a.String("zip_code"))
		},
	})
	r.Register(Tool{
		Name:        "get_census_demographics",
		Description: "Fetch ACS 5-year demographics for a ZIP code, falling back to its county.",
		Params:      []Param{zipParam},
		Fallback:    result.KindCensusRequestFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Demographics.Resolve(ctx, a.String("zip_code"))
		},
	})
	r.Register(Tool{
		Name:        "get_hud_fmr",
		Description: "Fetch HUD Fair Market Rents for a ZIP code's county or state.",
		Params:      []Param{zipParam, yearParam},
		Fallback:    result.KindHUDRequestFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.FMR.Resolve(ctx, a.String("zip_code"), a.Int("year", 0))
		},
	})
	r.Register(Tool{
		Name:        "get_rentcast_market",
		Description: "Fetch RentCast market statistics for a ZIP code.",
		Params:      []Param{zipParam},
		Fallback:    result.KindRentCastRequestFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Market.Summary(ctx, a.String("zip_code"))
		},
	})
	r.Register(Tool{
		Name:        "get_rentcast_sale_listings",
		Description: "Fetch RentCast sale listings for a ZIP code.",
		Params:      []Param{zipParam, {Name: "limit", Type: "integer", Description: "listings requested"}},
		Fallback:    result.KindRentCastRequestFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Market.Listings(ctx, a.String("zip_code"), a.Int("limit", 0))
		},
	})
	r.Register(Tool{
		Name:        "search_housing_prices",
		Description: "Return home price and rent benchmarks from listings, market data and HUD FMR.",
		Params:      []Param{zipParam, yearParam},
		Fallback:    result.KindHousingUnavailable,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Housing.Benchmark(ctx, a.String("zip_code"), a.Int("year", 0))
		},
	})
	r.Register(Tool{
		Name:        "search_nearby_amenities",
		Description: "Count and rate nearby amenities, using Google Places when possible.",
		Params:      []Param{zipParam, catParam, radiusParam},
		Fallback:    result.KindPlacesRequestFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Amenities.Search(ctx, a.String("zip_code"), a.String("category"), a.Int("radius_meters", 0))
		},
	})
	r.Register(Tool{
		Name:        "search_osm_amenities",
		Description: "Count nearby amenities from OpenStreetMap for a ZIP code.",
		Params:      []Param{zipParam, catParam, radiusParam},
		Fallback:    result.KindOverpassRequestFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Amenities.SearchOSM(ctx, a.String("zip_code"), a.String("category"), a.Int("radius_meters", 0))
		},
	})
	r.Register(Tool{
		Name:        "search_overpass_amenities",
		Description: "Count amenities from OpenStreetMap around a coordinate.",
		Params:      []Param{latParam, lonParam, catParam, radiusParam},
		Fallback:    result.KindOverpassRequestFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			lat, lon, err := coordinates(a)
			if err != nil {
				return nil, err
			}
			return d.Overpass.Search(ctx, lat, lon, a.String("category"), a.Int("radius_meters", osm.DefaultRadius))
		},
	})
	r.Register(Tool{
		Name:        "search_noise_proxies",
		Description: "Count noise-risk proxies (airports, rail, major roads, ...) near a ZIP code.",
		Params:      []Param{zipParam, radiusParam},
		Fallback:    result.KindOverpassRequestFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Noise.Report(ctx, a.String("zip_code"), a.Int("radius_meters", 0))
		},
	})
	r.Register(Tool{
		Name:        "get_walkscore",
		Description: "Get Walk Score, Transit Score and Bike Score for a coordinate or ZIP code.",
		Params: []Param{
			{Name: "lat", Type: "number"},
			{Name: "lon", Type: "number"},
			{Name: "address", Type: "string"},
			{Name: "zip_code", Type: "string", Description: "used when lat/lon are absent"},
		},
		Fallback: result.KindWalkScoreRequestFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			_, hasLat := a["lat"]
			_, hasLon := a["lon"]
			if !hasLat && !hasLon && a.String("zip_code") != "" {
				return d.Walkability.ForZip(ctx, a.String("zip_code"))
			}
			lat, lon, err := coordinates(a)
			if err != nil {
				return nil, err
			}
			return d.Walkability.Resolve(ctx, lat, lon, a.String("address"))
		},
	})
	r.Register(Tool{
		Name:        "search_new_developments",
		Description: "Fetch development and permit records from the configured open-data endpoint.",
		Params:      []Param{zipParam, {Name: "city", Type: "string"}},
		Fallback:    result.KindDevelopmentsFailed,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Developments.Search(ctx, a.String("zip_code"), a.String("city"))
		},
	})
	r.Register(Tool{
		Name:        "neighborhood_report",
		Description: "Build a full neighborhood report for a ZIP code.",
		Params:      []Param{zipParam},
		Fallback:    result.KindInternal,
		Run: func(ctx context.Context, a Args) (any, error) {
			return d.Reports.Build(ctx, a.String("zip_code"))
		},
	})
	r.Register(Tool{
		Name:        "compare_neighborhoods",
		Description: "Build and compare reports for two ZIP codes.",
		Params: []Param{
			{Name: "zip_code_a", Type: "string", Required: true},
			{Name: "zip_code_b", Type: "string", Required: true},
		},
		Fallback: result.KindInternal,
		Run: func(ctx context.Context, a Args) (any, error) {
			for _, key := range []string{"zip_code_a", "zip_code_b"} {
				if err := location.ValidateZip(a.String(key)); err != nil {
					return nil, err
				}
			}
			return d.Reports.Compare(ctx, a.String("zip_code_a"), a.String("zip_code_b")), nil
		},
	})

	return r
}

func coordinates(a Args) (float64, float64, error) {
	lat, okLat := a.Float("lat")
	lon, okLon := a.Float("lon")
	if !okLat || !okLon {
		return 0, 0, result.New(result.KindInvalidCoordinates, result.Details{"lat": a["lat"], "lon": a["lon"]})
	}
	if err := osm.ValidateCoordinates(lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
