package channel

import (
	"math/rand"
	"time"
)

// Backoff calculates exponential backoff with jitter for reconnect attempts.
// This prevents thundering herd problem when many clients retry simultaneously.
func Backoff(baseDelay time.Duration, attempt int, maxDelay time.Duration) time.Duration {
	// Exponential backoff: baseDelay * 2^attempt
	delay := baseDelay * time.Duration(1<<uint(attempt))
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}

	// Add jitter: random value between 0 and 25% of delay. Sub-4ns delays
	// have no jitter range at all.
	if quarter := int64(delay / 4); quarter > 0 {
		delay += time.Duration(rand.Int63n(quarter))
	}

	return delay
}
