package geocode

import (
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

func newTestLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

// redirectClient sends every request to srvURL, keeping path and query.
func redirectClient(srvURL string) *http.Client {
	target, err := url.Parse(srvURL)
	if err != nil {
		panic(err)
	}
	return &http.Client{Transport: redirectTransport{target: target}}
}

type redirectTransport struct {
	target *url.URL
}

func (t redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(out)
}
