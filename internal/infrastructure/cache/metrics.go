package cache

// Metrics receives cache events. Implementations must be safe for
// concurrent use and must not call back into the cache.
type Metrics interface {
	Hit(key string)
	Miss(key string)
	Join(key string)
	FetchError(key string)
	Expired(n int)
	OrphansPurged(n int)
}

// NoopMetrics discards every event.
type NoopMetrics struct{}

func (NoopMetrics) Hit(string)        {}
func (NoopMetrics) Miss(string)       {}
func (NoopMetrics) Join(string)       {}
func (NoopMetrics) FetchError(string) {}
func (NoopMetrics) Expired(int)       {}
func (NoopMetrics) OrphansPurged(int) {}
