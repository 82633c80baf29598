// Package server runs the admin HTTP server: health, client bindings and
// Prometheus metrics, on a listener shaped by socket configurators.
package server
