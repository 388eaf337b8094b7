package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/report"
	"github.com/sells-group/liveable/internal/result"
)

// mockDeps implements every resolver interface behind the tools.
type mockDeps struct {
	mock.Mock
}

func (m *mockDeps) Geocode(ctx context.Context, zip string) (model.Location, error) {
	args := m.Called(ctx, zip)
	return args.Get(0).(model.Location), args.Error(1)
}

func (m *mockDeps) Profile(ctx context.Context, zip string) (model.GeoProfile, error) {
	args := m.Called(ctx, zip)
	return args.Get(0).(model.GeoProfile), args.Error(1)
}

func (m *mockDeps) Resolve(ctx context.Context, zip string) (model.DemographicsRecord, error) {
	args := m.Called(ctx, zip)
	return args.Get(0).(model.DemographicsRecord), args.Error(1)
}

func (m *mockDeps) Benchmark(ctx context.Context, zip string, year int) (model.RentBenchmark, error) {
	args := m.Called(ctx, zip, year)
	return args.Get(0).(model.RentBenchmark), args.Error(1)
}

func (m *mockDeps) Report(ctx context.Context, zip string, radius int) (model.NoiseProxyReport, error) {
	args := m.Called(ctx, zip, radius)
	return args.Get(0).(model.NoiseProxyReport), args.Error(1)
}

type mockFMR struct{ mock.Mock }

func (m *mockFMR) Resolve(ctx context.Context, zip string, year int) (model.FairMarketRent, error) {
	args := m.Called(ctx, zip, year)
	return args.Get(0).(model.FairMarketRent), args.Error(1)
}

type mockWalk struct{ mock.Mock }

func (m *mockWalk) Resolve(ctx context.Context, lat, lon float64, address string) (model.WalkScore, error) {
	args := m.Called(ctx, lat, lon, address)
	return args.Get(0).(model.WalkScore), args.Error(1)
}

func (m *mockWalk) ForZip(ctx context.Context, zip string) (model.WalkScore, error) {
	args := m.Called(ctx, zip)
	return args.Get(0).(model.WalkScore), args.Error(1)
}

type mockOverpass struct{ mock.Mock }

func (m *mockOverpass) Search(ctx context.Context, lat, lon float64, category string, radius int) (*model.AmenityQueryResult, error) {
	args := m.Called(ctx, lat, lon, category, radius)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AmenityQueryResult), args.Error(1)
}

type mockReports struct{ mock.Mock }

func (m *mockReports) Build(ctx context.Context, zip string) (*report.Report, error) {
	args := m.Called(ctx, zip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *mockReports) Compare(ctx context.Context, a, b string) *report.Comparison {
	return m.Called(ctx, a, b).Get(0).(*report.Comparison)
}

func TestNew_RegistersEveryTool(t *testing.T) {
	r := New(Deps{})
	assert.Equal(t, []string{
		"compare_neighborhoods",
		"geocode_zip",
		"get_census_demographics",
		"get_geo_profile",
		"get_hud_fmr",
		"get_rentcast_market",
		"get_rentcast_sale_listings",
		"get_walkscore",
		"neighborhood_report",
		"search_housing_prices",
		"search_nearby_amenities",
		"search_new_developments",
		"search_noise_proxies",
		"search_osm_amenities",
		"search_overpass_amenities",
	}, r.Names())
	for _, tool := range r.List() {
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotEmpty(t, tool.Fallback, tool.Name)
	}
}

func TestTools_PassArgs(t *testing.T) {
	deps := &mockDeps{}
	fmr := &mockFMR{}
	deps.On("Geocode", mock.Anything, "94110").Return(model.Location{ZipCode: "94110", City: "San Francisco"}, nil)
	deps.On("Benchmark", mock.Anything, "94110", 2023).Return(model.RentBenchmark{ZipCode: "94110"}, nil)
	deps.On("Report", mock.Anything, "94110", 750).Return(model.NoiseProxyReport{ZipCode: "94110", RadiusMeters: 750}, nil)
	fmr.On("Resolve", mock.Anything, "94110", 0).Return(model.FairMarketRent{ZipCode: "94110", Year: 2025}, nil)

	r := New(Deps{Profiles: deps, Housing: deps, Noise: deps, FMR: fmr})
	ctx := context.Background()

	env := r.Invoke(ctx, "geocode_zip", Args{"zip_code": "94110"})
	require.False(t, env.IsError)
	assert.Contains(t, env.Text(), `"city":"San Francisco"`)

	env = r.Invoke(ctx, "search_housing_prices", Args{"zip_code": "94110", "year": "2023"})
	require.False(t, env.IsError)

	env = r.Invoke(ctx, "search_noise_proxies", Args{"zip_code": "94110", "radius_meters": 750.0})
	require.False(t, env.IsError)
	assert.Contains(t, env.Text(), `"radius_meters":750`)

	env = r.Invoke(ctx, "get_hud_fmr", Args{"zip_code": "94110"})
	require.False(t, env.IsError)

	deps.AssertExpectations(t)
	fmr.AssertExpectations(t)
}

func TestTools_FailuresBecomeEnvelopes(t *testing.T) {
	deps := &mockDeps{}
	deps.On("Resolve", mock.Anything, "94110").
		Return(model.DemographicsRecord{}, result.MissingKey("", "census_acs", "CENSUS_API_KEY"))

	env := New(Deps{Demographics: deps}).Invoke(context.Background(), "get_census_demographics", Args{"zip_code": "94110"})
	require.True(t, env.IsError)
	assert.Equal(t, result.KindMissingAPIKey, env.Kind)
	assert.Equal(t, "get_census_demographics", env.Details["tool"])
	assert.Equal(t, "CENSUS_API_KEY", env.Details["env"])
}

func TestTools_Overpass(t *testing.T) {
	ov := &mockOverpass{}
	ov.On("Search", mock.Anything, 37.7, -122.4, "parks", 1500).
		Return(&model.AmenityQueryResult{Category: "parks", Count: 4, SampleNames: []string{}}, nil)
	r := New(Deps{Overpass: ov})

	env := r.Invoke(context.Background(), "search_overpass_amenities", Args{"lat": 37.7, "lon": "-122.4", "category": "parks"})
	require.False(t, env.IsError, env.Text())
	assert.Contains(t, env.Text(), `"count":4`)

	env = r.Invoke(context.Background(), "search_overpass_amenities", Args{"lat": 137.7, "lon": 0, "category": "parks"})
	assert.Equal(t, result.KindInvalidCoordinates, env.Kind)

	env = r.Invoke(context.Background(), "search_overpass_amenities", Args{"category": "parks"})
	assert.Equal(t, result.KindInvalidCoordinates, env.Kind)
	ov.AssertNumberOfCalls(t, "Search", 1)
}

func TestTools_WalkScore(t *testing.T) {
	w := &mockWalk{}
	score := 88
	w.On("ForZip", mock.Anything, "98101").Return(model.WalkScore{WalkScore: &score}, nil)
	w.On("Resolve", mock.Anything, 47.6, -122.3, "Pike Place").Return(model.WalkScore{WalkScore: &score}, nil)
	r := New(Deps{Walkability: w})

	env := r.Invoke(context.Background(), "get_walkscore", Args{"zip_code": "98101"})
	require.False(t, env.IsError)
	assert.Contains(t, env.Text(), `"walkscore":88`)

	env = r.Invoke(context.Background(), "get_walkscore", Args{"lat": 47.6, "lon": -122.3, "address": "Pike Place"})
	require.False(t, env.IsError)

	env = r.Invoke(context.Background(), "get_walkscore", Args{"lat": 47.6})
	assert.Equal(t, result.KindInvalidCoordinates, env.Kind)
	w.AssertExpectations(t)
}

func TestTools_Compare(t *testing.T) {
	reps := &mockReports{}
	reps.On("Compare", mock.Anything, "94110", "10001").Return(&report.Comparison{
		A: result.Ok(&report.Report{ZipCode: "94110"}),
		B: result.Failed[*report.Report](result.New(result.KindGeocodeFailed, nil)),
	})
	r := New(Deps{Reports: reps})

	env := r.Invoke(context.Background(), "compare_neighborhoods", Args{"zip_code_a": "94110", "zip_code_b": "10001"})
	require.False(t, env.IsError)
	assert.Contains(t, env.Text(), `"b":{"error":{"error":"geocode_failed","status":"error"},"status":"failed"}`)

	env = r.Invoke(context.Background(), "compare_neighborhoods", Args{"zip_code_a": "94110", "zip_code_b": "1"})
	assert.Equal(t, result.KindInvalidZip, env.Kind)
	reps.AssertNumberOfCalls(t, "Compare", 1)
}
