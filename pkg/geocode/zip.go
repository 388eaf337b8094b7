package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoPlaces is returned when the ZIP directory knows the code but lists no places.
var ErrNoPlaces = eris.New("geocode: no places found for zip code")

// ZipPlace is the first place registered for a ZIP code.
type ZipPlace struct {
	ZipCode   string
	PlaceName string
	State     string
	StateAbbr string
	Latitude  float64
	Longitude float64
}

type zipResponse struct {
	PostCode string     `json:"post code"`
	Places   []zipPlace `json:"places"`
}

type zipPlace struct {
	PlaceName string `json:"place name"`
	State     string `json:"state"`
	StateAbbr string `json:"state abbreviation"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// LookupZip queries Zippopotam for the places of a US ZIP code.
func (g *geocoder) LookupZip(ctx context.Context, zip string) (*ZipPlace, error) {
	reqURL := strings.TrimRight(g.zipBaseURL, "/") + "/us/" + url.PathEscape(zip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: zip build request")
	}

	resp, err := g.zipHTTP.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: zip request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: zip read body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Service: "zippopotam", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var zr zipResponse
	if err := json.Unmarshal(body, &zr); err != nil {
		return nil, eris.Wrap(err, "geocode: zip parse response")
	}
	if len(zr.Places) == 0 {
		return nil, ErrNoPlaces
	}

	p := zr.Places[0]
	lat, err := strconv.ParseFloat(strings.TrimSpace(p.Latitude), 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: parse latitude %q", p.Latitude)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(p.Longitude), 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: parse longitude %q", p.Longitude)
	}

	return &ZipPlace{
		ZipCode:   zip,
		PlaceName: p.PlaceName,
		State:     p.State,
		StateAbbr: p.StateAbbr,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
