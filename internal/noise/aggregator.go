// Package noise counts infrastructure that correlates with ambient noise
// around a ZIP code.
package noise

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/liveable/internal/cache"
	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/pkg/overpass"
)

const (
	// DefaultRadius is used when the caller gives no radius.
	DefaultRadius = 500

	// QueryTimeout bounds each attempt of a proxy query.
	QueryTimeout = 12 * time.Second

	maxInFlight   = 3
	serverTimeout = 10

	note = "Proxy counts for neighborhood infrastructure and transport noise signals."
)

// Proxy is one noise-correlated OSM tag.
type Proxy struct {
	Name   string
	Filter overpass.Filter
}

// Proxies are the tags counted for every report.
var Proxies = []Proxy{
	{"street_lights", overpass.Filter{Key: "highway", Value: "street_lamp"}},
	{"surveillance", overpass.Filter{Key: "man_made", Value: "surveillance"}},
	{"benches", overpass.Filter{Key: "amenity", Value: "bench"}},
	{"post_boxes", overpass.Filter{Key: "amenity", Value: "post_box"}},
	{"airports", overpass.Filter{Key: "aeroway", Value: "aerodrome|runway", Regex: true}},
	{"rail", overpass.Filter{Key: "railway", Value: "rail"}},
	{"major_roads", overpass.Filter{Key: "highway", Value: "motorway|trunk|primary", Regex: true}},
}

// Counter runs a single count query. *osm.Engine implements it.
type Counter interface {
	Count(ctx context.Context, q overpass.Query, timeout time.Duration) (int, error)
	Source() string
}

// Aggregator fans the proxy queries out with bounded concurrency.
type Aggregator struct {
	geocoder location.Geocoder
	counter  Counter
	cache    *cache.Cache[model.NoiseProxyReport]
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCache replaces the default unbounded report cache.
func WithCache(c *cache.Cache[model.NoiseProxyReport]) Option {
	return func(a *Aggregator) { a.cache = c }
}

// NewAggregator creates an Aggregator.
func NewAggregator(g location.Geocoder, c Counter, opts ...Option) *Aggregator {
	a := &Aggregator{geocoder: g, counter: c}
	for _, o := range opts {
		o(a)
	}
	if a.cache == nil {
		a.cache = cache.New[model.NoiseProxyReport]()
	}
	return a
}

// Cache exposes the report cache.
func (a *Aggregator) Cache() *cache.Cache[model.NoiseProxyReport] { return a.cache }

// Report geocodes zip once and counts every proxy within radius. A proxy
// whose query fails gets a nil count and is listed in Errors; the others are
// unaffected. Only a geocoding failure fails the report. Complete reports are
// cached by (zip, radius).
func (a *Aggregator) Report(ctx context.Context, zip string, radius int) (model.NoiseProxyReport, error) {
	if radius <= 0 {
		radius = DefaultRadius
	}
	key := fmt.Sprintf("%s|%d", zip, radius)
	if hit, ok := a.cache.Get(key); ok {
		zap.L().Debug("noise: cache hit", zap.String("key", key))
		return hit.Clone(), nil
	}

	loc, err := a.geocoder.Geocode(ctx, zip)
	if err != nil {
		return model.NoiseProxyReport{}, err
	}

	counts := make(map[string]*int, len(Proxies))
	for _, p := range Proxies {
		counts[p.Name] = nil
	}
	var (
		mu     sync.Mutex
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for _, p := range Proxies {
		g.Go(func() error {
			n, err := a.counter.Count(gctx, overpass.Query{
				Filters: []overpass.Filter{p.Filter},
				Lat:     loc.Latitude,
				Lon:     loc.Longitude,
				Radius:  radius,
				Timeout: serverTimeout,
			}, QueryTimeout)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zap.L().Warn("noise: proxy query failed", zap.String("proxy", p.Name), zap.Error(err))
				failed = append(failed, p.Name)
				return nil
			}
			counts[p.Name] = &n
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(failed)
	rep := model.NoiseProxyReport{
		ZipCode:      zip,
		RadiusMeters: radius,
		Center:       loc.Center(),
		ProxyCounts:  counts,
		Errors:       failed,
		Source:       a.counter.Source(),
		Note:         note,
	}
	if len(failed) == 0 {
		a.cache.Put(key, rep.Clone())
	}
	return rep, nil
}
