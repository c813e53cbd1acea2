package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// FetchFunc produces the value for a key on a cache miss.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Execute returns the cached value for key, joins an in-flight fetch for it,
// or starts fetch and caches a successful result for ttl.
//
// At most one fetch per key runs at a time. The fetch is not tied to ctx:
// when ctx ends Execute returns ctx.Err(), but the fetch keeps running for
// any other waiters and still populates the cache. Fetch errors are returned
// to every waiter unchanged and are never cached.
func Execute[T any](ctx context.Context, c *Cache, key string, fetch FetchFunc[T], ttl time.Duration, opts ...EntryOption) (T, error) {
	var zero T

	c.mu.Lock()
	now := c.now()
	c.housekeepingLocked(now)

	if v, ok := c.readLocked(key, now); ok {
		c.mu.Unlock()
		c.metrics.Hit(key)
		t, ok := v.(T)
		if !ok {
			return zero, ErrTypeMismatch
		}
		return t, nil
	}

	ch, joined := c.tracker.join(key)
	if joined {
		c.mu.Unlock()
		c.metrics.Join(key)
	} else {
		c.metrics.Miss(key)
		ec := applyEntryOptions(opts)
		fetchCtx := context.WithoutCancel(ctx)
		ch, _ = c.tracker.register(key, now, func(gen uint64) (v any, err error) {
			settled := false
			// A fetch that exits its goroutine (runtime.Goexit) skips settle;
			// singleflight has dropped the call, so drop the record too.
			defer func() {
				if !settled {
					c.abandon(key, gen)
				}
			}()
			v, err = runFetch(fetchCtx, fetch)
			c.settle(key, gen, v, err, ttl, ec)
			settled = true
			return v, err
		})
		c.mu.Unlock()
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		t, ok := res.Val.(T)
		if !ok {
			return zero, ErrTypeMismatch
		}
		return t, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// settle stores a successful result and releases the pending record. A
// result whose call was cleared, or that is older than the data already
// cached, is dropped.
func (c *Cache) settle(key string, gen uint64, v any, err error, ttl time.Duration, ec entryConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	owned, startedAt := c.tracker.release(key, gen)
	if err != nil {
		c.metrics.FetchError(key)
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Debug("cache: fetch failed")
		}
		return
	}
	if !owned || c.store.fetchedAfter(key, startedAt) {
		return
	}
	c.store.writeFetched(key, v, ttl, c.now(), startedAt, ec.compensator)
}

func (c *Cache) abandon(key string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker.release(key, gen)
}

func runFetch[T any](ctx context.Context, fetch FetchFunc[T]) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache: fetch panicked: %v", r)
		}
	}()
	return fetch(ctx)
}
