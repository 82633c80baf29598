// Package http implements the admin API handlers: health and the client
// binding listing.
package http
