package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	censusBenchmark = "Public_AR_Current"
	censusVintage   = "Current_Current"
)

// Geography layer names in Census Geocoder responses.
const (
	LayerCounties     = "Counties"
	LayerTracts       = "Census Tracts"
	LayerMetroAreas   = "Metropolitan Statistical Areas"
	LayerMicropolitan = "Micropolitan Statistical Areas"
)

// Area is one geography record, e.g. a county with NAME/STATE/COUNTY/GEOID.
type Area map[string]any

// Get returns the attribute as a string, or nil when it is absent or empty.
func (a Area) Get(key string) *string {
	v, ok := a[key]
	if !ok || v == nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		s = fmt.Sprint(t)
	}
	if s == "" {
		return nil
	}
	return &s
}

// Geographies maps layer name to the areas containing the queried point.
type Geographies map[string][]Area

// First returns the first area of a layer, or nil when the layer is empty.
// Points on a boundary may belong to several areas; the first one wins.
func (g Geographies) First(layer string) Area {
	areas := g[layer]
	if len(areas) == 0 {
		return nil
	}
	return areas[0]
}

type geographiesResponse struct {
	Result struct {
		Geographies Geographies `json:"geographies"`
	} `json:"result"`
}

// Geographies reverse-geocodes lat/lon via the Census coordinates endpoint.
func (g *geocoder) Geographies(ctx context.Context, lat, lon float64) (*Geographies, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: census rate limit")
	}

	params := url.Values{
		"x":         {strconv.FormatFloat(lon, 'f', -1, 64)},
		"y":         {strconv.FormatFloat(lat, 'f', -1, 64)},
		"benchmark": {censusBenchmark},
		"vintage":   {censusVintage},
		"format":    {"json"},
	}
	reqURL := strings.TrimRight(g.censusBaseURL, "/") + "/geographies/coordinates?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census build request")
	}

	resp, err := g.censusHTTP.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census read body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Service: "census", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var gr geographiesResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, eris.Wrap(err, "geocode: census parse response")
	}
	geos := gr.Result.Geographies
	if geos == nil {
		geos = Geographies{}
	}
	return &geos, nil
}
