// Package result defines the structured failure type, the tool envelope, and
// the tri-state outcome shared by every resolver.
package result

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the machine-readable failure identifier surfaced in error envelopes.
type Kind string

// Failure kinds.
const (
	KindMissingAPIKey          Kind = "missing_api_key"
	KindInvalidZip             Kind = "invalid_zip"
	KindInvalidCoordinates     Kind = "invalid_coordinates"
	KindGeocodeFailed          Kind = "geocode_failed"
	KindGeoProfileFailed       Kind = "geo_profile_failed"
	KindCensusRequestFailed    Kind = "census_request_failed"
	KindCensusNoData           Kind = "census_no_data"
	KindCensusInvalid          Kind = "census_invalid_response"
	KindRentCastRequestFailed  Kind = "rentcast_request_failed"
	KindHUDRequestFailed       Kind = "hud_fmr_request_failed"
	KindMissingCountyFIPS      Kind = "missing_county_fips"
	KindHousingUnavailable     Kind = "housing_data_unavailable"
	KindPlacesRequestFailed    Kind = "places_request_failed"
	KindUnsupportedCategory    Kind = "unsupported_category"
	KindOverpassRequestFailed  Kind = "overpass_request_failed"
	KindOverpassInvalid        Kind = "overpass_invalid_response"
	KindWalkScoreRequestFailed Kind = "walkscore_request_failed"
	KindWalkScoreNoData        Kind = "walkscore_no_data"
	KindDevelopmentsNotConfig  Kind = "developments_not_configured"
	KindDevelopmentsFailed     Kind = "developments_request_failed"
	KindDevelopmentsInvalid    Kind = "developments_invalid_response"
	KindUnknownTool            Kind = "unknown_tool"
	KindInternal               Kind = "internal_error"
)

// Family groups kinds by how callers should react to them.
type Family string

// Failure families.
const (
	FamilyConfiguration Family = "configuration"
	FamilyValidation    Family = "validation"
	FamilyTransient     Family = "transient"
	FamilyPermanent     Family = "permanent"
	FamilyShape         Family = "shape"
)

var kindFamilies = map[Kind]Family{
	KindMissingAPIKey:         FamilyConfiguration,
	KindDevelopmentsNotConfig: FamilyConfiguration,
	KindInvalidZip:            FamilyValidation,
	KindInvalidCoordinates:    FamilyValidation,
	KindUnsupportedCategory:   FamilyValidation,
	KindUnknownTool:           FamilyValidation,
	KindCensusNoData:          FamilyPermanent,
	KindWalkScoreNoData:       FamilyPermanent,
	KindMissingCountyFIPS:     FamilyPermanent,
	KindCensusInvalid:         FamilyShape,
	KindOverpassInvalid:       FamilyShape,
	KindDevelopmentsInvalid:   FamilyShape,
}

// MaxBodyExcerpt caps the upstream body stored in failure details.
const MaxBodyExcerpt = 500

// Details carries diagnostic context for a Failure.
type Details map[string]any

// Failure is the only error type resolvers return.
type Failure struct {
	Kind    Kind
	Details Details
	cause   error
}

// New creates a Failure with the given kind and details.
func New(kind Kind, details Details) *Failure {
	if details == nil {
		details = Details{}
	}
	return &Failure{Kind: kind, Details: details}
}

// Wrap creates a Failure that keeps err as its cause. The cause message is
// recorded under details["message"] unless a message is already present.
func Wrap(err error, kind Kind, details Details) *Failure {
	f := New(kind, details)
	f.cause = err
	if err != nil {
		if _, ok := f.Details["message"]; !ok {
			f.Details["message"] = err.Error()
		}
	}
	return f
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(string(f.Kind))
	if status := f.Status(); status != 0 {
		fmt.Fprintf(&b, " (status %d)", status)
	}
	if f.cause != nil {
		b.WriteString(": ")
		b.WriteString(f.cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (f *Failure) Unwrap() error { return f.cause }

// Status returns the upstream HTTP status recorded in details, or 0.
func (f *Failure) Status() int {
	switch v := f.Details["status"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Family classifies the failure. Request failures are transient when the
// upstream answered 429/5xx or the transport timed out, permanent otherwise.
func (f *Failure) Family() Family {
	if fam, ok := kindFamilies[f.Kind]; ok {
		return fam
	}
	status := f.Status()
	if status == http.StatusTooManyRequests || status >= 500 {
		return FamilyTransient
	}
	if t, ok := f.Details["transient"].(bool); ok && t {
		return FamilyTransient
	}
	return FamilyPermanent
}

// Retryable reports whether the failure belongs to the transient family.
func (f *Failure) Retryable() bool { return f.Family() == FamilyTransient }

// With returns a copy of f with extra details merged in.
func (f *Failure) With(extra Details) *Failure {
	d := make(Details, len(f.Details)+len(extra))
	for k, v := range f.Details {
		d[k] = v
	}
	for k, v := range extra {
		d[k] = v
	}
	return &Failure{Kind: f.Kind, Details: d, cause: f.cause}
}

// As extracts a *Failure from err's chain.
func As(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsKind reports whether err carries a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	f, ok := As(err)
	return ok && f.Kind == kind
}

// Excerpt trims an upstream body to MaxBodyExcerpt characters.
func Excerpt(body string) string {
	r := []rune(body)
	if len(r) > MaxBodyExcerpt {
		return string(r[:MaxBodyExcerpt])
	}
	return body
}

// ClassifyStatus maps an HTTP status to the error_type label used in details.
func ClassifyStatus(status int) string {
	switch {
	case status == http.StatusNoContent:
		return "no_data"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "auth_error"
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= 400 && status < 500:
		return "bad_request"
	case status >= 500:
		return "upstream_error"
	default:
		return "unknown_error"
	}
}

// HTTPFailure builds a Failure for a non-success upstream response.
func HTTPFailure(kind Kind, tool, provider string, status int, body string) *Failure {
	d := Details{
		"provider":   provider,
		"status":     status,
		"error_type": ClassifyStatus(status),
		"body":       Excerpt(body),
	}
	if tool != "" {
		d["tool"] = tool
	}
	return New(kind, d)
}

// MissingKey builds the configuration failure for an absent provider key.
func MissingKey(tool, provider, env string) *Failure {
	return New(KindMissingAPIKey, Details{"tool": tool, "provider": provider, "env": env})
}
