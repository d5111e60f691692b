package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiter implements a simple sliding-window rate limiter
type RateLimiter struct {
	mu                sync.Mutex
	requestsPerMinute int
	lastRequests      []time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rpm int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: rpm,
		lastRequests:      make([]time.Time, 0),
	}
}

// claim records the request if the window has room, otherwise it returns
// the time at which the oldest recorded request leaves the window.
func (r *RateLimiter) claim(now time.Time) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	windowStart := now.Add(-time.Minute)
	valid := make([]time.Time, 0, len(r.lastRequests))
	for _, t := range r.lastRequests {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	r.lastRequests = valid

	if len(r.lastRequests) >= r.requestsPerMinute {
		return r.lastRequests[0].Add(time.Minute), false
	}

	r.lastRequests = append(r.lastRequests, now)
	return time.Time{}, true
}

// Wait blocks until a request can be made within rate limits. The lock is
// not held while sleeping, so other callers can claim slots or bail out on
// their own context in the meantime; after waking the window is rechecked
// because a slot may already have been taken.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		now := time.Now()
		retryAt, ok := r.claim(now)
		if ok {
			return nil
		}

		waitDuration := retryAt.Sub(now)
		if waitDuration <= 0 {
			continue
		}

		slog.Info("Rate limit reached, waiting...",
			"waitSeconds", waitDuration.Seconds(),
			"rpm", r.requestsPerMinute,
		)

		select {
		case <-time.After(waitDuration):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Limiter for the Anthropic Messages API used by the analytics assistant
var assistantRateLimiter = NewRateLimiter(30)
