// Package httpclient builds the HTTP clients registered through the binder.
//
// A Module describes one named client: its qualifier, aliases, configuration
// defaults and whether it gets a private I/O pool. A Client is built from the
// module's resolved Config plus the filters and socket configurators bound
// under its qualifier.
//
// Transport layering, outermost first:
//   - resty request surface (headers, timeout, redirect policy)
//   - go-retryablehttp retries with exponential backoff
//   - request filters, in registration order
//   - Prometheus instrumentation
//   - I/O pool slot acquisition
//   - net/http.Transport whose dialer applies the socket configurators
//
// Each Client also owns a rate limiter and a circuit breaker.
//
// Example Usage:
//
//	m := httpclient.NewModule("billing", "billing")
//	cfg, err := m.LoadConfig()
//	client, err := httpclient.New(httpclient.Options{
//		Name:    m.Name(),
//		Config:  cfg,
//		Filters: []httpclient.Filter{httpclient.NewTraceTokenFilter()},
//	})
//	resp, err := client.Get(ctx, "https://billing.internal/v1/invoices")
package httpclient
