// Package llm provides rate limiting shared by the LLM service adapters.
package llm

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
)

// Ensure RateLimiter implements the interface.
var _ driven.Limiter = (*RateLimiter)(nil)

// RateLimitConfig holds rate limiting configuration for a generation
// service.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained rate limit.
	RequestsPerMinute int
	// BurstSize is the maximum burst size. Zero means RequestsPerMinute.
	BurstSize int
}

// DefaultRateLimit is conservative for free-tier generative language
// quotas.
var DefaultRateLimit = RateLimitConfig{RequestsPerMinute: 15}

// RateLimiter limits outbound generation calls. It uses a token bucket
// with optional backoff for 429 responses. One instance is shared by
// every caller that draws on the same external quota.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a rate limiter from the configuration.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultRateLimit.RequestsPerMinute
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = cfg.RequestsPerMinute
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.BurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate
// limit. It also respects any backoff period set by
// RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError records a rate limit error and sets a backoff
// period. Call this when receiving a 429 response.
func (r *RateLimiter) RecordRateLimitError(retryAfterSeconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfterSeconds <= 0 {
		// Default backoff: 60 seconds
		retryAfterSeconds = 60
	}

	r.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}

// Allow checks if a request can be made immediately without blocking.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}

	return r.limiter.Allow()
}
