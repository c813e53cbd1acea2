package cache

import (
	"context"
	"time"
)

// StartSweeper runs Housekeeping every interval until ctx is cancelled. It is
// optional: expiry is enforced on every access regardless. The returned
// channel is closed once the sweeper has stopped.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Housekeeping()
			}
		}
	}()
	return done
}
