package cache

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now as the cache's time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPendingTTL overrides DefaultPendingTTL.
func WithPendingTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.pendingTTL = d
		}
	}
}

// WithMetrics sets the event sink.
func WithMetrics(m Metrics) Option {
	return func(c *Cache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger enables debug logging of expirations, purges and fetch errors.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// EntryOption configures a single write.
type EntryOption func(*entryConfig)

type entryConfig struct {
	compensator Compensator
}

// WithCompensation marks the written value as one whose reads must be
// adjusted for the time elapsed since the write.
func WithCompensation(c Compensator) EntryOption {
	return func(ec *entryConfig) { ec.compensator = c }
}

func applyEntryOptions(opts []EntryOption) entryConfig {
	var ec entryConfig
	for _, o := range opts {
		o(&ec)
	}
	return ec
}
