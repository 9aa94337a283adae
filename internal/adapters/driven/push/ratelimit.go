package push

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerSecond paces Push API calls when no rate is configured.
	DefaultRequestsPerSecond = 5

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter spaces Push API calls with a token bucket and honours
// Retry-After from throttled responses.
type RateLimiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests per second.
// Values below 1 fall back to DefaultRequestsPerSecond.
func NewRateLimiter(perSecond int) *RateLimiter {
	if perSecond < 1 {
		perSecond = DefaultRequestsPerSecond
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	// 1. Respect a server-imposed pause
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	// 2. Proactive throttling
	return r.bucket.Wait(ctx)
}

// CheckRateLimit returns a RateLimitError for 429 responses and records
// the Retry-After pause for later calls.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	var retryAt time.Time
	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			retryAt = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}

	r.mu.Lock()
	r.retryAt = retryAt
	r.mu.Unlock()

	rateErr := &RateLimitError{RetryAt: retryAt}
	if resp.Request != nil {
		rateErr.URL = resp.Request.URL.String()
	}
	return rateErr
}

// RetryAt returns the time before which no request is sent.
func (r *RateLimiter) RetryAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}
