package report

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/result"
)

type fakes struct {
	demoErr  error
	county   bool
	noiseErr []string
}

func (f *fakes) Geocode(_ context.Context, zip string) (model.Location, error) {
	if zip == "00000" {
		return model.Location{}, result.New(result.KindGeocodeFailed, result.Details{"status": 404})
	}
	return model.Location{ZipCode: zip, City: "Denver", State: "CO", Latitude: 39.74, Longitude: -104.99}, nil
}

func (f *fakes) Profile(ctx context.Context, zip string) (model.GeoProfile, error) {
	loc, _ := f.Geocode(ctx, zip)
	state, county, name := "08", "031", "Denver County"
	return model.GeoProfile{Location: loc, StateFIPS: &state, CountyFIPS: &county, CountyName: &name}, nil
}

func (f *fakes) Resolve(_ context.Context, zip string) (model.DemographicsRecord, error) {
	if f.demoErr != nil {
		return model.DemographicsRecord{}, f.demoErr
	}
	rec := model.DemographicsRecord{ZipCode: zip}
	if f.county {
		rec.Geography = model.GeographyCounty
		rec.GeographyFIPS = "08031"
	}
	return rec, nil
}

func (f *fakes) Benchmark(_ context.Context, zip string, _ int) (model.RentBenchmark, error) {
	return model.RentBenchmark{ZipCode: zip, Sources: []string{"HUD FMR API"}}, nil
}

func (f *fakes) Report(_ context.Context, zip string, radius int) (model.NoiseProxyReport, error) {
	return model.NoiseProxyReport{ZipCode: zip, RadiusMeters: radius, Errors: f.noiseErr}, nil
}

func (f *fakes) ForZip(context.Context, string) (model.WalkScore, error) {
	return model.WalkScore{}, result.MissingKey("", "walkscore", "WALKSCORE_API_KEY")
}

func (f *fakes) Search(_ context.Context, zip, c string, _ int) (model.AmenityQueryResult, error) {
	return model.AmenityQueryResult{ZipCode: zip, Category: c, Count: 3, SampleNames: []string{}}, nil
}

func sources(f *fakes) Sources {
	return Sources{Profiles: f, Demographics: f, Housing: f, Noise: f, Walkability: f, Amenities: f}
}

type memArchive struct {
	mu    sync.Mutex
	saved []*model.ArchivedReport
	err   error
}

func (m *memArchive) SaveReport(_ context.Context, r *model.ArchivedReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	r.ID = "id-1"
	m.saved = append(m.saved, r)
	return nil
}

func newBuilder(f *fakes, opts ...Option) *Builder {
	b := NewBuilder(sources(f), opts...)
	b.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return b
}

func TestBuild_SectionsIndependent(t *testing.T) {
	f := &fakes{demoErr: result.New(result.KindCensusRequestFailed, result.Details{"status": 500})}
	r, err := newBuilder(f, WithCategories([]string{"parks", "cafes"})).Build(context.Background(), "80202")
	require.NoError(t, err)

	assert.Equal(t, result.StatusFailed, r.Demographics.Status)
	assert.Equal(t, result.StatusFailed, r.Walkability.Status)
	assert.Equal(t, result.StatusOK, r.Profile.Status)
	assert.Equal(t, result.StatusOK, r.Housing.Status)
	assert.Equal(t, result.StatusOK, r.Noise.Status)
	assert.Len(t, r.Amenities, 2)
	assert.Equal(t, 3, r.Amenities["cafes"].Value.Count)
	assert.Equal(t, result.StatusDegraded, r.Status)
}

func TestBuild_DegradedSections(t *testing.T) {
	f := &fakes{county: true, noiseErr: []string{"rail"}}
	r, err := newBuilder(f).Build(context.Background(), "80202")
	require.NoError(t, err)

	assert.Equal(t, result.StatusDegraded, r.Demographics.Status)
	assert.Equal(t, []string{"demographics: county-level figures for 08031"}, r.Demographics.Caveats)
	assert.Equal(t, result.StatusDegraded, r.Noise.Status)
	assert.Equal(t, []string{"noise: no count for rail"}, r.Noise.Caveats)
	assert.Len(t, r.Amenities, len(DefaultCategories))
}

func TestBuild_GeocodeFailure(t *testing.T) {
	_, err := newBuilder(&fakes{}).Build(context.Background(), "00000")
	assert.True(t, result.IsKind(err, result.KindGeocodeFailed))
}

func TestBuild_JSON(t *testing.T) {
	r, err := newBuilder(&fakes{}).Build(context.Background(), "80202")
	require.NoError(t, err)

	raw, err := result.Canonical(r)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	center := doc["center"].(map[string]any)
	geometry := center["geometry"].(map[string]any)
	assert.Equal(t, "Point", geometry["type"])
	assert.Equal(t, []any{-104.99, 39.74}, geometry["coordinates"])
	props := center["properties"].(map[string]any)
	assert.Equal(t, "08031", props["county_fips"])
	assert.Equal(t, "Denver County", props["county_name"])

	walk := doc["walkability"].(map[string]any)
	assert.Equal(t, "failed", walk["status"])
	errBody := walk["error"].(map[string]any)
	assert.Equal(t, "missing_api_key", errBody["error"])
	assert.Equal(t, "2026-01-02T03:04:05Z", doc["generated_at"])
}

func TestBuild_Archives(t *testing.T) {
	a := &memArchive{}
	_, err := newBuilder(&fakes{}, WithArchive(a)).Build(context.Background(), "80202")
	require.NoError(t, err)

	require.Len(t, a.saved, 1)
	assert.Equal(t, KindReport, a.saved[0].Kind)
	assert.Equal(t, []string{"80202"}, a.saved[0].ZipCodes)
	assert.Contains(t, string(a.saved[0].Payload), `"zip_code":"80202"`)
}

func TestBuild_ArchiveFailureIgnored(t *testing.T) {
	a := &memArchive{err: errors.New("disk full")}
	r, err := newBuilder(&fakes{}, WithArchive(a)).Build(context.Background(), "80202")
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestCompare_IndependentFailures(t *testing.T) {
	a := &memArchive{}
	c := newBuilder(&fakes{}, WithArchive(a)).Compare(context.Background(), "80202", "00000")

	require.Equal(t, result.StatusOK, c.A.Status)
	assert.Equal(t, "80202", c.A.Value.ZipCode)
	assert.Equal(t, result.StatusFailed, c.B.Status)
	assert.True(t, result.IsKind(c.B.Err, result.KindGeocodeFailed))

	require.Len(t, a.saved, 1, "comparison archived once, not per side")
	assert.Equal(t, KindComparison, a.saved[0].Kind)
	assert.Equal(t, []string{"80202", "00000"}, a.saved[0].ZipCodes)
}
