// Package tracing carries trace identifiers across process boundaries.
//
// A trace id enters through the X-Trace-ID header (admin server middleware)
// or is minted locally, travels in the request context, and leaves again
// through the trace-token request filter installed on HTTP clients.
package tracing
