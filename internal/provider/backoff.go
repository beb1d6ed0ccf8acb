package provider

import (
	"math"
	"math/rand"
	"time"
)

// backoffDelay computes the wait before retry number attempt (0-based):
// exponential growth from base with 50-100% jitter so synchronized clients
// spread out. A vendor retry-after hint overrides the computed delay when it
// is longer.
func backoffDelay(base time.Duration, attempt int, retryAfter time.Duration) time.Duration {
	backoff := float64(base) * math.Pow(2, float64(attempt))
	jitter := 0.5 + rand.Float64()*0.5
	delay := time.Duration(backoff * jitter)
	if retryAfter > delay {
		return retryAfter
	}
	return delay
}
