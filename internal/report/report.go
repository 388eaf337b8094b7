// Package report assembles every resolver into a neighborhood report and
// compares two ZIP codes side by side.
package report

import (
	"context"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/result"
)

// DefaultCategories are the amenity categories included when none are
// configured.
var DefaultCategories = []string{"grocery_stores", "restaurants", "parks", "schools", "transit_stations"}

// DemographicsSource resolves ACS demographics.
type DemographicsSource interface {
	Resolve(ctx context.Context, zip string) (model.DemographicsRecord, error)
}

// HousingSource resolves rent benchmarks.
type HousingSource interface {
	Benchmark(ctx context.Context, zip string, year int) (model.RentBenchmark, error)
}

// NoiseSource counts noise proxies.
type NoiseSource interface {
	Report(ctx context.Context, zip string, radius int) (model.NoiseProxyReport, error)
}

// WalkabilitySource scores a ZIP's center.
type WalkabilitySource interface {
	ForZip(ctx context.Context, zip string) (model.WalkScore, error)
}

// AmenitySource counts amenities by category.
type AmenitySource interface {
	Search(ctx context.Context, zip, category string, radius int) (model.AmenityQueryResult, error)
}

// Sources are the resolvers a Builder draws from.
type Sources struct {
	Profiles     location.Profiler
	Demographics DemographicsSource
	Housing      HousingSource
	Noise        NoiseSource
	Walkability  WalkabilitySource
	Amenities    AmenitySource
}

// Report is a neighborhood summary. Every section carries its own status so a
// failed provider never hides the others.
type Report struct {
	ZipCode      string                                              `json:"zip_code"`
	GeneratedAt  time.Time                                           `json:"generated_at"`
	Status       result.Status                                       `json:"status"`
	Location     model.Location                                      `json:"location"`
	Center       *geojson.Feature                                    `json:"center,omitempty"`
	Profile      result.Outcome[model.GeoProfile]                    `json:"geo_profile"`
	Demographics result.Outcome[model.DemographicsRecord]            `json:"demographics"`
	Housing      result.Outcome[model.RentBenchmark]                 `json:"housing"`
	Noise        result.Outcome[model.NoiseProxyReport]              `json:"noise"`
	Walkability  result.Outcome[model.WalkScore]                     `json:"walkability"`
	Amenities    map[string]result.Outcome[model.AmenityQueryResult] `json:"amenities"`
}

// Archiver persists produced reports.
type Archiver interface {
	SaveReport(ctx context.Context, r *model.ArchivedReport) error
}

// Builder produces reports.
type Builder struct {
	src        Sources
	categories []string
	archive    Archiver
	now        func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithCategories sets the amenity categories included in each report.
func WithCategories(categories []string) Option {
	return func(b *Builder) {
		if len(categories) > 0 {
			b.categories = categories
		}
	}
}

// WithArchive saves every produced report. Save failures are logged and never
// fail the report.
func WithArchive(a Archiver) Option {
	return func(b *Builder) {
		b.archive = a
	}
}

// NewBuilder creates a Builder.
func NewBuilder(src Sources, opts ...Option) *Builder {
	b := &Builder{src: src, categories: DefaultCategories, now: time.Now}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build geocodes zip and then resolves each section in turn. Only a geocoding
// failure fails the whole report.
func (b *Builder) Build(ctx context.Context, zip string) (*Report, error) {
	loc, err := b.src.Profiles.Geocode(ctx, zip)
	if err != nil {
		return nil, err
	}

	r := &Report{
		ZipCode:     zip,
		GeneratedAt: b.now().UTC(),
		Location:    loc,
		Amenities:   make(map[string]result.Outcome[model.AmenityQueryResult], len(b.categories)),
	}

	r.Profile = result.From(b.src.Profiles.Profile(ctx, zip))
	r.Demographics = demographicsOutcome(b.src.Demographics.Resolve(ctx, zip))
	r.Housing = housingOutcome(b.src.Housing.Benchmark(ctx, zip, 0))
	r.Noise = noiseOutcome(b.src.Noise.Report(ctx, zip, 0))
	r.Walkability = result.From(b.src.Walkability.ForZip(ctx, zip))
	for _, c := range b.categories {
		r.Amenities[c] = result.From(b.src.Amenities.Search(ctx, zip, c, 0))
	}

	r.Center = centerFeature(loc, r.Profile)
	r.Status = r.overall()

	if b.archive != nil {
		b.save(ctx, KindReport, []string{zip}, r)
	}
	return r, nil
}

func (r *Report) overall() result.Status {
	statuses := []result.Status{
		r.Profile.Status, r.Demographics.Status, r.Housing.Status,
		r.Noise.Status, r.Walkability.Status,
	}
	for _, a := range r.Amenities {
		statuses = append(statuses, a.Status)
	}
	for _, s := range statuses {
		if s != result.StatusOK {
			return result.StatusDegraded
		}
	}
	return result.StatusOK
}

func demographicsOutcome(rec model.DemographicsRecord, err error) result.Outcome[model.DemographicsRecord] {
	if err != nil {
		return result.Failed[model.DemographicsRecord](err)
	}
	if rec.Degraded() {
		return result.Degraded(rec, "demographics: county-level figures for "+rec.GeographyFIPS)
	}
	return result.Ok(rec)
}

func housingOutcome(b model.RentBenchmark, err error) result.Outcome[model.RentBenchmark] {
	if err != nil {
		return result.Failed[model.RentBenchmark](err)
	}
	if len(b.Caveats) > 0 {
		return result.Degraded(b, b.Caveats...)
	}
	return result.Ok(b)
}

func noiseOutcome(n model.NoiseProxyReport, err error) result.Outcome[model.NoiseProxyReport] {
	if err != nil {
		return result.Failed[model.NoiseProxyReport](err)
	}
	if len(n.Errors) > 0 {
		caveats := make([]string, 0, len(n.Errors))
		for _, tag := range n.Errors {
			caveats = append(caveats, "noise: no count for "+tag)
		}
		return result.Degraded(n, caveats...)
	}
	return result.Ok(n)
}

// centerFeature renders the ZIP center as a GeoJSON point feature annotated
// with whatever geography the profile resolved.
func centerFeature(loc model.Location, profile result.Outcome[model.GeoProfile]) *geojson.Feature {
	props := map[string]any{
		"zip_code": loc.ZipCode,
		"city":     loc.City,
		"state":    loc.State,
	}
	if profile.Usable() {
		p := profile.Value
		if geoid := p.CountyGEOID(); geoid != "" {
			props["county_fips"] = geoid
		}
		if p.CountyName != nil {
			props["county_name"] = *p.CountyName
		}
		if p.CBSATitle != nil {
			props["cbsa_title"] = *p.CBSATitle
		}
	}
	pt := geom.NewPointFlat(geom.XY, []float64{loc.Longitude, loc.Latitude}).SetSRID(4326)
	return &geojson.Feature{ID: loc.ZipCode, Geometry: pt, Properties: props}
}

func (b *Builder) save(ctx context.Context, kind string, zips []string, payload any) {
	raw, err := result.Canonical(payload)
	if err != nil {
		zap.L().Warn("report: encode for archive failed", zap.Error(err))
		return
	}
	rec := &model.ArchivedReport{Kind: kind, ZipCodes: zips, Payload: raw, CreatedAt: b.now().UTC()}
	if err := b.archive.SaveReport(ctx, rec); err != nil {
		zap.L().Warn("report: archive failed", zap.Strings("zip_codes", zips), zap.Error(err))
		return
	}
	zap.L().Debug("report: archived", zap.String("id", rec.ID), zap.String("kind", kind))
}
