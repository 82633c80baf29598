// Package middleware holds gin middleware for the admin API: CORS for
// browser dashboards and per-IP or global rate limiting.
package middleware
