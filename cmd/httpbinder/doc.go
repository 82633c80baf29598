// Package main is the httpbinder operator binary.
//
// It loads a YAML bindings file into a client registry and either serves the
// admin API over it, prints the validated bindings, or issues a one-off GET
// through a bound client.
//
// Configuration:
//   - Process settings from the environment (ADMIN_*, LOG_*, SHARED_IO_POOL_SIZE,
//     BINDINGS_FILE); flags override them
//   - Per-client settings under <NAME>_HTTP_CLIENT_*
//
// Usage:
//
//	httpbinder serve --bindings clients.yaml
//	httpbinder bindings --bindings clients.yaml -o json
//	httpbinder get payments https://billing.internal/v1/health
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown of serve
package main
