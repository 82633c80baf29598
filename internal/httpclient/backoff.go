package httpclient

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/go-retryablehttp"
)

// retryBackoff honours Retry-After on 429 and 503 responses. Otherwise the
// wait grows exponentially with jitter and stays within [min, max].
func retryBackoff(min, max time.Duration, attempt int, resp *http.Response) time.Duration {
	if resp != nil && resp.Header.Get("Retry-After") != "" &&
		(resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
		return retryablehttp.DefaultBackoff(min, max, attempt, resp)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min
	b.MaxInterval = max

	var wait time.Duration
	for i := 0; i <= attempt; i++ {
		wait = b.NextBackOff()
	}
	if wait <= 0 || wait > max {
		wait = max
	}
	if wait < min {
		wait = min
	}
	return wait
}
