/*
Package resilience provides the per-client circuit breaker.

# Overview

Each resolved HTTP client owns one Breaker. Transport errors and 5xx
responses count as failures. Once ReadyToTrip reports true the breaker
opens and requests fail fast with ErrCircuitOpen until Timeout elapses.
The breaker then admits MaxRequests probes in the half-open state before
closing again.

# Usage

	breaker := resilience.New("billing", resilience.Settings{
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: resilience.ConsecutiveFailures(10),
	})

	result, err := breaker.Execute(func() (interface{}, error) {
		return client.Do(req)
	})
*/
package resilience
