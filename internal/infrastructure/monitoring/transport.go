package monitoring

import (
	"net/http"
	"strconv"
	"time"
)

type instrumentedTransport struct {
	client  string
	metrics *Metrics
	next    http.RoundTripper
}

// InstrumentTransport wraps next so every round trip is counted and timed
// under the client label.
func (m *Metrics) InstrumentTransport(client string, next http.RoundTripper) http.RoundTripper {
	return &instrumentedTransport{client: client, metrics: m, next: next}
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	inFlight := t.metrics.ClientInFlight.WithLabelValues(t.client)
	inFlight.Inc()
	defer inFlight.Dec()

	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	t.metrics.RecordClientRequest(t.client, req.Method, status, time.Since(start))

	return resp, err
}
