package ports

import (
	"context"
	"time"
)

// RateLimitRepository stores per-client request counters. Implementations
// must be safe for concurrent use.
type RateLimitRepository interface {
	// IncrementWindow bumps the counter of the window containing now and
	// keeps the key alive for ttl. It returns the new count and the window start.
	IncrementWindow(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (count int, windowStart time.Time, err error)
}

// RateLimitDecision is the outcome of consuming one request unit. Remaining
// counts the requests still admitted in the window and is never negative.
type RateLimitDecision struct {
	Allowed   bool
	Remaining int
	Limit     int
	Reset     time.Time
}

// RetryAfter is the whole number of seconds until Reset, at least one.
func (d RateLimitDecision) RetryAfter(now time.Time) int {
	secs := int(d.Reset.Sub(now).Seconds() + 0.999)
	if secs < 1 {
		return 1
	}
	return secs
}

// RateLimiterService throttles API callers by client key.
type RateLimiterService interface {
	// Allow consumes one unit for clientKey. On a storage error the returned
	// decision allows the request and err is non-nil.
	Allow(ctx context.Context, clientKey string) (RateLimitDecision, error)
}
