package remote

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRatePerSecond is the proactive request rate.
	DefaultRatePerSecond = 10.0

	// DefaultBurst is the token bucket size.
	DefaultBurst = 4

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter throttles requests to the remote store. It combines a token
// bucket with a back-off window opened by 429 responses.
type RateLimiter struct {
	mu           sync.Mutex
	bucket       *rate.Limiter
	blockedUntil time.Time
}

// NewRateLimiter creates a rate limiter. A non-positive rate disables the bucket.
func NewRateLimiter(perSecond float64) *RateLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, DefaultBurst),
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	blockedUntil := r.blockedUntil
	r.mu.Unlock()

	if wait := time.Until(blockedUntil); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.bucket.Wait(ctx)
}

// Observe opens a back-off window when the response is a 429.
func (r *RateLimiter) Observe(resp *http.Response) {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return
	}

	backoff := time.Second
	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			backoff = time.Duration(seconds) * time.Second
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if until := time.Now().Add(backoff); until.After(r.blockedUntil) {
		r.blockedUntil = until
	}
}

// BlockedUntil returns the end of the current back-off window.
func (r *RateLimiter) BlockedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blockedUntil
}
