// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// The same Logger feeds the HTTP client stack: resty receives the sugared
// logger and go-retryablehttp receives a leveled adapter, so retry attempts
// and transport errors land in the same stream as binding events.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("client resolved", zap.String("client", "billing"))
//	logger.Error("dial failed", zap.Error(err))
package logging
