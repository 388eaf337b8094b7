package result

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailure_Family(t *testing.T) {
	tests := []struct {
		name string
		f    *Failure
		want Family
	}{
		{"missing key", MissingKey("t", "p", "ENV"), FamilyConfiguration},
		{"invalid zip", New(KindInvalidZip, nil), FamilyValidation},
		{"rate limited", HTTPFailure(KindOverpassRequestFailed, "t", "p", 429, ""), FamilyTransient},
		{"gateway timeout", HTTPFailure(KindOverpassRequestFailed, "t", "p", 504, ""), FamilyTransient},
		{"bad request", HTTPFailure(KindCensusRequestFailed, "t", "p", 400, ""), FamilyPermanent},
		{"no data", New(KindCensusNoData, nil), FamilyPermanent},
		{"shape", New(KindOverpassInvalid, nil), FamilyShape},
		{"census shape", New(KindCensusInvalid, nil), FamilyShape},
		{"transport timeout", New(KindOverpassRequestFailed, Details{"transient": true}), FamilyTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Family())
		})
	}
}

func TestHTTPFailure_ExcerptsBody(t *testing.T) {
	body := strings.Repeat("x", 900)
	f := HTTPFailure(KindCensusRequestFailed, "get_census_demographics", "census", 403, body)

	assert.Len(t, f.Details["body"], MaxBodyExcerpt)
	assert.Equal(t, "auth_error", f.Details["error_type"])
	assert.Equal(t, 403, f.Status())
	assert.Contains(t, f.Error(), "status 403")
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	f := Wrap(cause, KindGeocodeFailed, Details{"tool": "geocode_zip"})

	assert.ErrorIs(t, f, cause)
	assert.Equal(t, cause.Error(), f.Details["message"])

	got, ok := As(f)
	require.True(t, ok)
	assert.Equal(t, KindGeocodeFailed, got.Kind)
	assert.True(t, IsKind(f, KindGeocodeFailed))
}

func TestEnvelope_ErrorShape(t *testing.T) {
	env := FromError(New(KindInvalidZip, Details{"zip_code": "123"}), KindInternal, "geocode_zip")

	require.True(t, env.IsError)
	assert.JSONEq(t,
		`{"status":"error","error":"invalid_zip","details":{"tool":"geocode_zip","zip_code":"123"}}`,
		env.Text())
}

func TestEnvelope_RawErrorUsesFallback(t *testing.T) {
	env := FromError(context.DeadlineExceeded, KindOverpassRequestFailed, "search_noise_proxies")

	assert.Equal(t, KindOverpassRequestFailed, env.Kind)
	assert.Equal(t, true, env.Details["transient"])
	assert.Equal(t, "search_noise_proxies", env.Details["tool"])
}

func TestEnvelope_SortsKeys(t *testing.T) {
	payload := struct {
		Zebra string `json:"zebra"`
		Alpha int    `json:"alpha"`
		Mid   any    `json:"mid"`
	}{"z", 1, map[string]int{"b": 2, "a": 1}}

	assert.Equal(t, `{"alpha":1,"mid":{"a":1,"b":2},"zebra":"z"}`, OK(payload).Text())
}

func TestOutcome_States(t *testing.T) {
	ok := Ok(3)
	assert.True(t, ok.Usable())
	assert.Equal(t, StatusOK, ok.Status)

	deg := Degraded(4, "market: rentcast_request_failed")
	assert.True(t, deg.Usable())
	assert.Equal(t, []string{"market: rentcast_request_failed"}, deg.Caveats)

	failed := From(0, New(KindCensusNoData, nil))
	assert.False(t, failed.Usable())
	assert.Equal(t, "census: census_no_data", failed.Caveat("census"))
}

func TestOutcome_MarshalJSON(t *testing.T) {
	b, err := Failed[int](New(KindInvalidZip, nil)).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"failed","error":{"status":"error","error":"invalid_zip"}}`, string(b))

	b, err = Degraded("v", "b", "a").MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"degraded","value":"v","caveats":["a","b"]}`, string(b))
}
