// Package osm answers amenity questions from OpenStreetMap via the Overpass
// API, with retry, radius narrowing and result caching.
package osm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/liveable/internal/cache"
	"github.com/sells-group/liveable/internal/category"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/resilience"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/overpass"
)

const (
	// DefaultRadius is used when the caller gives no radius.
	DefaultRadius = 1500
	// MaxCountRadius caps count-only queries.
	MaxCountRadius = 800
	// MinRadius is the last step of radius narrowing.
	MinRadius = 500

	maxSampleNames = 5
	provider       = "overpass"

	noteFull  = "OSM amenities provide counts only (no ratings)."
	noteCount = "Counts only (fast query) for safety infrastructure."
)

// Engine runs category searches and raw count queries against Overpass.
type Engine struct {
	client overpass.Client
	cache  *cache.Cache[model.AmenityQueryResult]
	retry  resilience.RetryConfig
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache sets the result cache. The default is an unbounded cache owned by
// the engine.
func WithCache(c *cache.Cache[model.AmenityQueryResult]) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithRetryConfig overrides the per-query retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(e *Engine) {
		e.retry = cfg
	}
}

// NewEngine creates an Engine over client.
func NewEngine(client overpass.Client, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		retry:  resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.cache == nil {
		e.cache = cache.New[model.AmenityQueryResult]()
	}
	e.retry.ShouldRetry = Retryable
	e.retry.OnRetry = resilience.RetryLogger(provider, "interpreter")
	return e
}

// Source is the interpreter URL reported on results.
func (e *Engine) Source() string { return e.client.URL() }

// Supported returns the sorted canonical categories the engine can query.
func (e *Engine) Supported() []string { return category.OSM.Supported() }

// Cache exposes the result cache, e.g. for Reset between tests.
func (e *Engine) Cache() *cache.Cache[model.AmenityQueryResult] { return e.cache }

// Search counts the amenities of a category around a point. Identical
// lookups are served from the cache.
func (e *Engine) Search(ctx context.Context, lat, lon float64, raw string, radius int) (*model.AmenityQueryResult, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	canonical := category.OSM.Resolve(raw)
	filters, ok := Filters(canonical)
	if !canonical.Known() || !ok {
		details := result.Details{
			"category":  raw,
			"supported": e.Supported(),
		}
		if hint := category.OSM.Suggest(raw); len(hint) > 0 {
			details["did_you_mean"] = hint
		}
		return nil, result.New(result.KindUnsupportedCategory, details)
	}
	if radius <= 0 {
		radius = DefaultRadius
	}

	key := cacheKey(lat, lon, canonical, radius)
	if hit, ok := e.cache.Get(key); ok {
		zap.L().Debug("osm: cache hit", zap.String("key", key))
		out := hit.Clone()
		return &out, nil
	}

	output := overpass.OutCenter
	if CountOnly(canonical) {
		output = overpass.OutCount
	}

	var lastErr error
	for _, r := range Radii(radius, CountOnly(canonical)) {
		q := overpass.Query{Filters: filters, Lat: lat, Lon: lon, Radius: r, Output: output}
		resp, err := e.run(ctx, q, 0)
		if err != nil {
			lastErr = err
			if !Retryable(err) {
				return nil, err
			}
			zap.L().Warn("osm: narrowing radius after failure",
				zap.String("category", string(canonical)),
				zap.Int("radius", r),
				zap.Error(err),
			)
			continue
		}

		res := e.buildResult(canonical, resp, r, output)
		e.cache.Put(cacheKey(lat, lon, canonical, r), res)
		e.cache.Put(key, res)
		out := res.Clone()
		return &out, nil
	}
	return nil, lastErr
}

// Count runs a single count query with the engine's retry policy. A positive
// timeout bounds each attempt. Results are not cached.
func (e *Engine) Count(ctx context.Context, q overpass.Query, timeout time.Duration) (int, error) {
	q.Output = overpass.OutCount
	resp, err := e.run(ctx, q, timeout)
	if err != nil {
		return 0, err
	}
	return resp.Total(), nil
}

func (e *Engine) run(ctx context.Context, q overpass.Query, timeout time.Duration) (*overpass.Response, error) {
	return resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*overpass.Response, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := e.client.Run(ctx, q)
		if err != nil {
			return nil, classify(err)
		}
		return resp, nil
	})
}

func (e *Engine) buildResult(c category.Category, resp *overpass.Response, radius int, output overpass.Output) model.AmenityQueryResult {
	res := model.AmenityQueryResult{
		Category:     string(c),
		SampleNames:  []string{},
		RadiusMeters: radius,
		Source:       e.Source(),
	}
	if output == overpass.OutCount {
		res.Count = resp.Total()
		res.Note = noteCount
		return res
	}
	res.Count = len(resp.Elements)
	names := resp.Names()
	if len(names) > maxSampleNames {
		names = names[:maxSampleNames]
	}
	res.SampleNames = append(res.SampleNames, names...)
	res.Note = noteFull
	return res
}

// classify turns client errors into Failures.
func classify(err error) error {
	var apiErr *overpass.APIError
	switch {
	case errors.As(err, &apiErr):
		return result.HTTPFailure(result.KindOverpassRequestFailed, "", provider, apiErr.StatusCode, apiErr.Body)
	case errors.Is(err, overpass.ErrInvalidResponse):
		return result.Wrap(err, result.KindOverpassInvalid, result.Details{"provider": provider})
	default:
		transient := resilience.IsTransient(err) || errors.Is(err, context.DeadlineExceeded)
		return result.Wrap(err, result.KindOverpassRequestFailed, result.Details{
			"provider":  provider,
			"transient": transient,
		})
	}
}

// Retryable reports whether an Overpass failure is worth another attempt:
// 429, 504, or a transport timeout/connection error.
func Retryable(err error) bool {
	f, ok := result.As(err)
	if !ok || f.Kind != result.KindOverpassRequestFailed {
		return false
	}
	switch f.Status() {
	case http.StatusTooManyRequests, http.StatusGatewayTimeout:
		return true
	case 0:
		t, _ := f.Details["transient"].(bool)
		return t
	default:
		return false
	}
}

// Radii is the narrowing sequence for a requested radius: the request itself,
// then 800 and 500 when smaller. Count-only sequences are capped at 800.
func Radii(requested int, countOnly bool) []int {
	seq := []int{requested}
	if requested > MaxCountRadius {
		seq = append(seq, MaxCountRadius)
	}
	if requested > MinRadius {
		seq = append(seq, MinRadius)
	}
	if !countOnly {
		return seq
	}
	out := make([]int, 0, len(seq))
	for _, r := range seq {
		if r > MaxCountRadius {
			r = MaxCountRadius
		}
		if len(out) == 0 || out[len(out)-1] != r {
			out = append(out, r)
		}
	}
	return out
}

// ValidateCoordinates rejects non-finite or out-of-range coordinates.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return result.New(result.KindInvalidCoordinates, result.Details{"lat": lat, "lon": lon})
	}
	return nil
}

func cacheKey(lat, lon float64, c category.Category, radius int) string {
	return fmt.Sprintf("%.5f|%.5f|%s|%d", lat, lon, c, radius)
}
