package pipeline

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces upstream requests by a fixed interval. Safe for
// concurrent use: when the engine fans out across symbols, fetches are still
// issued at most once per interval overall.
type RateLimiter struct {
	interval time.Duration
	mu       sync.Mutex
	next     time.Time
}

// NewRateLimiter creates a limiter that allows one operation per interval.
// A non-positive interval disables limiting.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Wait blocks until the next request slot is available or the context is
// cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.interval <= 0 {
		return nil
	}

	rl.mu.Lock()
	now := time.Now()
	var wait time.Duration
	if rl.next.After(now) {
		wait = rl.next.Sub(now)
		rl.next = rl.next.Add(rl.interval)
	} else {
		rl.next = now.Add(rl.interval)
	}
	rl.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
