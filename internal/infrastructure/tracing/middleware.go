package tracing

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPMiddleware seeds the request context with the caller's trace id (or a
// fresh one) and a new span id, and echoes both on the response.
func HTTPMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID, _ := Extract(c.Request.Header)
		if traceID == "" {
			traceID = NewTraceID()
		}
		spanID := NewSpanID()

		ctx := WithSpanID(WithTraceID(c.Request.Context(), traceID), spanID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(TraceHeader, string(traceID))
		c.Header(SpanHeader, string(spanID))

		start := time.Now()
		c.Next()

		fields := append(Fields(ctx),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
		if len(c.Errors) > 0 {
			logger.Error("request completed with error", append(fields, zap.Error(c.Errors.Last()))...)
			return
		}
		logger.Debug("request completed", fields...)
	}
}
