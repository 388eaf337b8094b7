package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/liveable/internal/amenity"
	"github.com/sells-group/liveable/internal/cache"
	"github.com/sells-group/liveable/internal/config"
	"github.com/sells-group/liveable/internal/demographics"
	"github.com/sells-group/liveable/internal/developments"
	"github.com/sells-group/liveable/internal/housing"
	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/noise"
	"github.com/sells-group/liveable/internal/osm"
	"github.com/sells-group/liveable/internal/registry"
	"github.com/sells-group/liveable/internal/report"
	"github.com/sells-group/liveable/internal/resilience"
	"github.com/sells-group/liveable/internal/store"
	"github.com/sells-group/liveable/internal/walkability"
	"github.com/sells-group/liveable/pkg/census"
	"github.com/sells-group/liveable/pkg/geocode"
	"github.com/sells-group/liveable/pkg/google"
	"github.com/sells-group/liveable/pkg/hud"
	"github.com/sells-group/liveable/pkg/overpass"
	"github.com/sells-group/liveable/pkg/permits"
	"github.com/sells-group/liveable/pkg/rentcast"
	"github.com/sells-group/liveable/pkg/walkscore"
)

// app holds the wired tool registry and the archive behind it.
type app struct {
	Tools   *registry.Registry
	Engine  *osm.Engine
	Archive store.Store
}

// Close releases the archive, if one was opened.
func (a *app) Close() {
	if a.Archive != nil {
		if err := a.Archive.Close(); err != nil {
			zap.L().Warn("close archive", zap.Error(err))
		}
	}
}

// newApp is swapped out by tests.
var newApp = initApp

// initApp wires every provider client and resolver from cfg. Providers whose
// key is absent stay nil so their resolvers answer missing_api_key. An archive
// that cannot be opened is logged and skipped.
func initApp(ctx context.Context, c *config.Config) (*app, error) {
	if c == nil {
		return nil, eris.New("config not loaded")
	}

	a := &app{}
	if c.Report.Archive {
		st, err := initStore(ctx, c)
		if err != nil {
			zap.L().Warn("report archive disabled", zap.Error(err))
		} else {
			a.Archive = st
		}
	}

	var archive report.Archiver
	if a.Archive != nil {
		archive = a.Archive
	}
	deps, engine := buildDeps(c, archive)
	a.Tools = registry.New(deps)
	a.Engine = engine
	return a, nil
}

// buildDeps constructs the resolver graph. No network access happens here.
func buildDeps(c *config.Config, archive report.Archiver) (registry.Deps, *osm.Engine) {
	geoOpts := []geocode.Option{}
	if c.Geocode.RateLimit > 0 {
		geoOpts = append(geoOpts, geocode.WithRateLimit(c.Geocode.RateLimit))
	}
	if c.Geocode.ZipBaseURL != "" {
		geoOpts = append(geoOpts, geocode.WithZipBaseURL(c.Geocode.ZipBaseURL))
	}
	if c.Geocode.CensusBaseURL != "" {
		geoOpts = append(geoOpts, geocode.WithCensusBaseURL(c.Geocode.CensusBaseURL))
	}
	geo := geocode.NewClient(geoOpts...)
	zips := location.NewZipGeocoder(geo)
	profiles := location.NewProfileResolver(zips, geo)

	var censusClient census.Client
	if c.Census.APIKey != "" {
		var opts []census.Option
		if c.Census.BaseURL != "" {
			opts = append(opts, census.WithBaseURL(c.Census.BaseURL))
		}
		censusClient = census.NewClient(c.Census.APIKey, opts...)
	}

	var hudClient hud.Client
	if c.HUD.APIKey != "" {
		var opts []hud.Option
		if c.HUD.BaseURL != "" {
			opts = append(opts, hud.WithBaseURL(c.HUD.BaseURL))
		}
		hudClient = hud.NewClient(c.HUD.APIKey, opts...)
	}

	var rentcastClient rentcast.Client
	if c.RentCast.APIKey != "" {
		var opts []rentcast.Option
		if c.RentCast.BaseURL != "" {
			opts = append(opts, rentcast.WithBaseURL(c.RentCast.BaseURL))
		}
		rentcastClient = rentcast.NewClient(c.RentCast.APIKey, opts...)
	}

	var placesClient google.Client
	if c.Google.APIKey != "" {
		var opts []google.Option
		if c.Google.BaseURL != "" {
			opts = append(opts, google.WithBaseURL(c.Google.BaseURL))
		}
		placesClient = google.NewClient(c.Google.APIKey, opts...)
	}

	var walkscoreClient walkscore.Client
	if c.WalkScore.APIKey != "" {
		var opts []walkscore.Option
		if c.WalkScore.BaseURL != "" {
			opts = append(opts, walkscore.WithBaseURL(c.WalkScore.BaseURL))
		}
		walkscoreClient = walkscore.NewClient(c.WalkScore.APIKey, opts...)
	}

	var permitsClient permits.Client
	if c.Permits.BaseURL != "" {
		opts := []permits.Option{permits.WithQuery(c.Permits.Query)}
		if c.Permits.Limit > 0 {
			opts = append(opts, permits.WithLimit(c.Permits.Limit))
		}
		permitsClient = permits.NewClient(c.Permits.BaseURL, opts...)
	}

	var ovOpts []overpass.Option
	if c.Overpass.URL != "" {
		ovOpts = append(ovOpts, overpass.WithURL(c.Overpass.URL))
	}
	if c.Overpass.RateLimit > 0 {
		ovOpts = append(ovOpts, overpass.WithRateLimit(c.Overpass.RateLimit, c.Overpass.Burst))
	}
	engine := osm.NewEngine(overpass.NewClient(ovOpts...),
		osm.WithCache(overpassCache[model.AmenityQueryResult](c.Overpass)),
		osm.WithRetryConfig(resilience.FromRetryConfig(c.Overpass.MaxAttempts, c.Overpass.BackoffStepMs)),
	)

	demo := demographics.NewResolver(censusClient, profiles, demographics.WithYear(c.Census.Year))
	fmr := housing.NewFMRResolver(hudClient, profiles)
	market := housing.NewMarket(rentcastClient)
	rents := housing.NewResolver(market, fmr)
	amenities := amenity.NewRouter(zips, placesClient, engine)
	noiseProxies := noise.NewAggregator(zips, engine,
		noise.WithCache(overpassCache[model.NoiseProxyReport](c.Overpass)))
	walk := walkability.NewResolver(walkscoreClient, zips)

	builder := report.NewBuilder(report.Sources{
		Profiles:     profiles,
		Demographics: demo,
		Housing:      rents,
		Noise:        noiseProxies,
		Walkability:  walk,
		Amenities:    amenities,
	}, report.WithCategories(c.Report.Categories), report.WithArchive(archive))

	return registry.Deps{
		Profiles:     profiles,
		Demographics: demo,
		FMR:          fmr,
		Market:       market,
		Housing:      rents,
		Amenities:    amenities,
		Overpass:     engine,
		Noise:        noiseProxies,
		Walkability:  walk,
		Developments: developments.NewResolver(permitsClient),
		Reports:      builder,
	}, engine
}

// overpassCache builds a cache for Overpass-derived results. A positive size
// bounds it with LRU eviction.
func overpassCache[V any](c config.OverpassConfig) *cache.Cache[V] {
	var opts []cache.Option
	if c.CacheSize > 0 {
		opts = append(opts, cache.WithPolicy(cache.LRU(c.CacheSize)))
	}
	if c.CacheTTLMins > 0 {
		opts = append(opts, cache.WithTTL(time.Duration(c.CacheTTLMins)*time.Minute))
	}
	return cache.New[V](opts...)
}
