package httpclient

import (
	"fmt"
	"net/http"
)

// Filter intercepts an outgoing request before it is sent. It may modify
// the request in place or return a replacement.
type Filter interface {
	FilterRequest(req *http.Request) (*http.Request, error)
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(req *http.Request) (*http.Request, error)

// FilterRequest calls f(req).
func (f FilterFunc) FilterRequest(req *http.Request) (*http.Request, error) {
	return f(req)
}

// FilterFactory constructs a filter when the client is resolved.
type FilterFactory func() Filter

// StaticHeaders returns a filter setting fixed headers on every request.
func StaticHeaders(headers map[string]string) Filter {
	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}
	return FilterFunc(func(req *http.Request) (*http.Request, error) {
		for k, v := range h {
			req.Header[k] = append([]string(nil), v...)
		}
		return req, nil
	})
}

type filterTransport struct {
	filters []Filter
	next    http.RoundTripper
}

func newFilterTransport(filters []Filter, next http.RoundTripper) http.RoundTripper {
	if len(filters) == 0 {
		return next
	}
	return &filterTransport{filters: append([]Filter(nil), filters...), next: next}
}

// RoundTrip clones the request once so filters never mutate the caller's
// copy, then runs the filters in order.
func (t *filterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	for i, f := range t.filters {
		filtered, err := f.FilterRequest(out)
		if err != nil {
			closeBody(req)
			return nil, fmt.Errorf("request filter %d (%T): %w", i, f, err)
		}
		if filtered == nil {
			closeBody(req)
			return nil, fmt.Errorf("request filter %d (%T) returned no request", i, f)
		}
		out = filtered
	}
	return t.next.RoundTrip(out)
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}
