package httpclient

import (
	"net/http"

	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/tracing"
)

// TraceTokenFilter propagates the trace id held by the request context in
// the X-Trace-ID header. Requests without a trace id pass through untouched.
type TraceTokenFilter struct{}

// NewTraceTokenFilter is the FilterFactory used by WithTracing.
func NewTraceTokenFilter() Filter {
	return TraceTokenFilter{}
}

// FilterRequest implements Filter.
func (TraceTokenFilter) FilterRequest(req *http.Request) (*http.Request, error) {
	tracing.Inject(req.Context(), req.Header)
	return req, nil
}
