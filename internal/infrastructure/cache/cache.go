package cache

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrTypeMismatch is returned when a cached value does not have the type the
// caller asked for. It indicates two call sites sharing a key with different
// value types.
var ErrTypeMismatch = errors.New("cache: cached value has unexpected type")

// Stats is a point-in-time view of the cache.
type Stats struct {
	CacheSize       int `json:"cacheSize"`
	PendingRequests int `json:"pendingRequests"`
	TotalEntries    int `json:"totalEntries"`
}

// Cache combines the entry store and the in-flight tracker behind a single
// mutex. Construct one per process with New and share it; the zero value is
// not usable.
type Cache struct {
	mu         sync.Mutex
	store      *store
	tracker    *tracker
	now        func() time.Time
	pendingTTL time.Duration
	metrics    Metrics
	logger     *logrus.Logger
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		store:      newStore(),
		tracker:    newTracker(),
		now:        time.Now,
		pendingTTL: DefaultPendingTTL,
		metrics:    NoopMetrics{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the value stored for key, compensated when the entry was
// written with WithCompensation.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.housekeepingLocked(now)
	return c.readLocked(key, now)
}

// GetAs is Get with a typed result. A value of another type reports
// ErrTypeMismatch.
func GetAs[T any](c *Cache, key string) (T, bool, error) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, false, ErrTypeMismatch
	}
	return t, true, nil
}

// Set stores value under key for ttl, replacing any previous entry.
func (c *Cache) Set(key string, value any, ttl time.Duration, opts ...EntryOption) {
	ec := applyEntryOptions(opts)
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.housekeepingLocked(now)
	c.store.write(key, value, ttl, now, ec.compensator)
}

// Clear removes the given keys' entries and pending fetches. Without keys it
// empties the cache. A fetch that is still running when its key is cleared
// completes for its current waiters but does not store its result.
func (c *Cache) Clear(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.store.reset()
		c.tracker.reset()
		return
	}
	for _, k := range keys {
		c.store.delete(k)
		c.tracker.forget(k)
	}
}

// Housekeeping drops expired entries and orphaned pending fetches. The cache
// runs it inline on every access; calling it separately only reclaims memory
// sooner.
func (c *Cache) Housekeeping() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.housekeepingLocked(c.now())
}

// Stats reports entry and pending-fetch counts.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	size := c.store.len()
	pending := c.tracker.len()
	return Stats{CacheSize: size, PendingRequests: pending, TotalEntries: size + pending}
}

func (c *Cache) readLocked(key string, now time.Time) (any, bool) {
	v, ok, expired := c.store.read(key, now)
	if expired {
		c.metrics.Expired(1)
	}
	return v, ok
}

func (c *Cache) housekeepingLocked(now time.Time) {
	if n := c.store.sweep(now); n > 0 {
		c.metrics.Expired(n)
		if c.logger != nil {
			c.logger.WithField("count", n).Debug("cache: expired entries removed")
		}
	}
	if n := c.tracker.purgeStale(now, c.pendingTTL); n > 0 {
		c.metrics.OrphansPurged(n)
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"count": n, "ceiling": c.pendingTTL}).Warn("cache: orphaned pending fetches purged")
		}
	}
}

// Namespace returns the part of key before the first ':' and is used to keep
// metric label cardinality bounded.
func Namespace(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
