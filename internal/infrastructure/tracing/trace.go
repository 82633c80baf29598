package tracing

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/httpbinder/internal/shared/id"
)

// Header names used for propagation.
const (
	TraceHeader = "X-Trace-ID"
	SpanHeader  = "X-Span-ID"
)

// TraceID identifies one logical operation across services.
type TraceID string

// SpanID identifies one hop within a trace.
type SpanID string

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// NewTraceID mints a fresh trace id.
func NewTraceID() TraceID {
	return TraceID(id.NewTraceID())
}

// NewSpanID mints a fresh span id.
func NewSpanID() SpanID {
	return SpanID(id.NewSpanID())
}

// WithTraceID stores the trace id in ctx.
func WithTraceID(ctx context.Context, traceID TraceID) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// WithSpanID stores the span id in ctx.
func WithSpanID(ctx context.Context, spanID SpanID) context.Context {
	return context.WithValue(ctx, spanIDKey, spanID)
}

// GetTraceID retrieves the trace id from ctx, or "" when absent.
func GetTraceID(ctx context.Context) TraceID {
	if traceID, ok := ctx.Value(traceIDKey).(TraceID); ok {
		return traceID
	}
	return ""
}

// GetSpanID retrieves the span id from ctx, or "" when absent.
func GetSpanID(ctx context.Context) SpanID {
	if spanID, ok := ctx.Value(spanIDKey).(SpanID); ok {
		return spanID
	}
	return ""
}

// Extract reads trace context from inbound headers.
func Extract(h http.Header) (TraceID, SpanID) {
	return TraceID(h.Get(TraceHeader)), SpanID(h.Get(SpanHeader))
}

// Inject writes the trace context held by ctx into outbound headers. It
// reports whether a trace id was present.
func Inject(ctx context.Context, h http.Header) bool {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		return false
	}
	h.Set(TraceHeader, string(traceID))
	if spanID := GetSpanID(ctx); spanID != "" {
		h.Set(SpanHeader, string(spanID))
	}
	return true
}

// Fields returns zap fields for the trace context held by ctx.
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", string(traceID)))
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, zap.String("span_id", string(spanID)))
	}
	return fields
}
