package noise

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/overpass"
)

type stubGeocoder struct {
	err   error
	calls atomic.Int32
}

func (g *stubGeocoder) Geocode(_ context.Context, zip string) (model.Location, error) {
	g.calls.Add(1)
	if g.err != nil {
		return model.Location{}, g.err
	}
	return model.Location{ZipCode: zip, Latitude: 40.7, Longitude: -74.0}, nil
}

type stubCounter struct {
	fail     map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32

	mu      sync.Mutex
	queries []overpass.Query
	timeout time.Duration
}

func (c *stubCounter) Count(_ context.Context, q overpass.Query, timeout time.Duration) (int, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	c.mu.Lock()
	c.queries = append(c.queries, q)
	c.timeout = timeout
	c.mu.Unlock()

	if c.fail[q.Filters[0].Value] {
		return 0, result.New(result.KindOverpassRequestFailed, result.Details{"status": 504})
	}
	return len(q.Filters[0].Value), nil
}

func (c *stubCounter) Source() string { return "https://overpass.test" }

func TestReport_AllProxies(t *testing.T) {
	c := &stubCounter{}
	rep, err := NewAggregator(&stubGeocoder{}, c).Report(context.Background(), "10001", 0)
	require.NoError(t, err)

	assert.Len(t, rep.ProxyCounts, 7)
	for _, p := range Proxies {
		require.NotNil(t, rep.ProxyCounts[p.Name], p.Name)
	}
	assert.Equal(t, len("street_lamp"), *rep.ProxyCounts["street_lights"])
	assert.Empty(t, rep.Errors)
	assert.Equal(t, DefaultRadius, rep.RadiusMeters)
	assert.Equal(t, 40.7, rep.Center.Latitude)
	assert.Equal(t, note, rep.Note)

	assert.Len(t, c.queries, 7)
	assert.LessOrEqual(t, c.peak.Load(), int32(maxInFlight))
	assert.Equal(t, QueryTimeout, c.timeout)
	for _, q := range c.queries {
		assert.Equal(t, serverTimeout, q.Timeout)
		assert.Equal(t, DefaultRadius, q.Radius)
	}
}

func TestReport_OneProxyFails(t *testing.T) {
	c := &stubCounter{fail: map[string]bool{"rail": true}}
	rep, err := NewAggregator(&stubGeocoder{}, c).Report(context.Background(), "10001", 750)
	require.NoError(t, err)

	assert.Len(t, rep.ProxyCounts, 7)
	v, ok := rep.ProxyCounts["rail"]
	assert.True(t, ok, "failed proxy keeps its key")
	assert.Nil(t, v)
	assert.Equal(t, []string{"rail"}, rep.Errors)

	populated := 0
	for _, v := range rep.ProxyCounts {
		if v != nil {
			populated++
		}
	}
	assert.Equal(t, 6, populated)
}

func TestReport_ErrorsSorted(t *testing.T) {
	c := &stubCounter{fail: map[string]bool{"street_lamp": true, "bench": true, "rail": true}}
	rep, err := NewAggregator(&stubGeocoder{}, c).Report(context.Background(), "10001", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"benches", "rail", "street_lights"}, rep.Errors)
}

func TestReport_GeocodeFailure(t *testing.T) {
	c := &stubCounter{}
	g := &stubGeocoder{err: result.New(result.KindInvalidZip, nil)}
	_, err := NewAggregator(g, c).Report(context.Background(), "1", 0)
	assert.True(t, result.IsKind(err, result.KindInvalidZip))
	assert.Empty(t, c.queries)
}

func TestReport_GeocodeError(t *testing.T) {
	g := &stubGeocoder{err: errors.New("dns")}
	_, err := NewAggregator(g, &stubCounter{}).Report(context.Background(), "10001", 0)
	assert.Error(t, err)
}

func TestReport_CachedByZipAndRadius(t *testing.T) {
	g := &stubGeocoder{}
	c := &stubCounter{}
	a := NewAggregator(g, c)

	first, err := a.Report(context.Background(), "10001", 500)
	require.NoError(t, err)
	*first.ProxyCounts["rail"] = -1

	second, err := a.Report(context.Background(), "10001", 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), g.calls.Load())
	assert.Len(t, c.queries, 7)
	assert.Equal(t, len("rail"), *second.ProxyCounts["rail"], "cached report is not shared with callers")

	_, err = a.Report(context.Background(), "10001", 750)
	require.NoError(t, err)
	assert.Equal(t, int32(2), g.calls.Load())
	assert.Equal(t, 2, a.Cache().Len())
}

func TestReport_PartialReportNotCached(t *testing.T) {
	g := &stubGeocoder{}
	a := NewAggregator(g, &stubCounter{fail: map[string]bool{"rail": true}})

	_, err := a.Report(context.Background(), "10001", 0)
	require.NoError(t, err)
	_, err = a.Report(context.Background(), "10001", 0)
	require.NoError(t, err)

	assert.Equal(t, int32(2), g.calls.Load())
	assert.Zero(t, a.Cache().Len())
}
