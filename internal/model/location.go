// Package model defines the value types produced by the resolvers.
package model

// Location is a geocoded ZIP code.
type Location struct {
	ZipCode   string  `json:"zip_code"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Center returns the location's coordinates.
func (l Location) Center() Center {
	return Center{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Center is a coordinate pair attached to area queries.
type Center struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	State     string  `json:"state,omitempty"`
}

// GeoProfile holds the federal geography identifiers for a ZIP. Every
// identifier is nil when the reverse lookup had no match for it.
type GeoProfile struct {
	Location
	CountyName *string `json:"county_name"`
	CountyFIPS *string `json:"county_fips"`
	StateFIPS  *string `json:"state_fips"`
	TractGEOID *string `json:"tract_geoid"`
	TractName  *string `json:"tract_name"`
	CBSACode   *string `json:"cbsa_code"`
	CBSATitle  *string `json:"cbsa_title"`
	Source     string  `json:"source"`
}

// CountyGEOID returns the 5-digit state+county FIPS, or "" when either part
// is missing.
func (p GeoProfile) CountyGEOID() string {
	if p.StateFIPS == nil || p.CountyFIPS == nil {
		return ""
	}
	return *p.StateFIPS + *p.CountyFIPS
}
