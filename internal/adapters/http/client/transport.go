package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/lojista/pkg/metrics"
)

// instrumentedTransport records per-endpoint fetch metrics.
type instrumentedTransport struct {
	next http.RoundTripper
}

func newInstrumentedTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if _, ok := next.(*instrumentedTransport); ok {
		return next
	}
	return &instrumentedTransport{next: next}
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	endpoint := strings.Trim(req.URL.Path, "/")
	if i := strings.LastIndex(endpoint, "/"); i >= 0 {
		endpoint = endpoint[i+1:]
	}

	resp, err := t.next.RoundTrip(req)

	outcome := metrics.OutcomeSuccess
	switch {
	case err != nil && req.Context().Err() != nil:
		outcome = metrics.OutcomeTimeout
	case err != nil, resp.StatusCode >= http.StatusBadRequest:
		outcome = metrics.OutcomeError
	}
	metrics.RecordFetch(endpoint, outcome, time.Since(start))
	return resp, err
}
