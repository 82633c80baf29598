/*
Package monitoring provides Prometheus metrics for bound HTTP clients and
the admin server.

# Overview

Metrics are registered on an injected prometheus.Registerer so that each
Registry (and each test) owns its collectors.

# Client metrics

  - httpbinder_client_requests_total{client,method,status}
  - httpbinder_client_request_duration_seconds{client,method}
  - httpbinder_client_in_flight{client}
  - httpbinder_client_breaker_state{client}
  - httpbinder_io_pool_in_flight{pool}

# Admin server metrics

  - httpbinder_admin_requests_total{method,path,status}
  - httpbinder_admin_request_duration_seconds{method,path}

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	transport := metrics.InstrumentTransport("billing", http.DefaultTransport)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
*/
package monitoring
