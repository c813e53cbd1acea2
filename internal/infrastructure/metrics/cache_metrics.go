package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
)

// CacheMetrics exports request cache events to Prometheus, labelled by key
// namespace so per-track keys do not explode cardinality.
type CacheMetrics struct {
	lookups       *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	expired       prometheus.Counter
	orphansPurged prometheus.Counter
}

// NewCacheMetrics creates the cache collectors and registers them with reg.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "request_cache_lookups_total",
				Help: "Request cache lookups by key namespace and result (hit, miss, join)",
			},
			[]string{"namespace", "result"},
		),
		fetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "request_cache_fetch_errors_total",
				Help: "Failed upstream fetches by key namespace",
			},
			[]string{"namespace"},
		),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "request_cache_expired_total",
			Help: "Entries removed after their ttl elapsed",
		}),
		orphansPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "request_cache_orphans_purged_total",
			Help: "In-flight fetches abandoned after exceeding the pending ceiling",
		}),
	}
	reg.MustRegister(m.lookups, m.fetchErrors, m.expired, m.orphansPurged)
	return m
}

func (m *CacheMetrics) Hit(key string)  { m.lookups.WithLabelValues(cache.Namespace(key), "hit").Inc() }
func (m *CacheMetrics) Miss(key string) { m.lookups.WithLabelValues(cache.Namespace(key), "miss").Inc() }
func (m *CacheMetrics) Join(key string) { m.lookups.WithLabelValues(cache.Namespace(key), "join").Inc() }

func (m *CacheMetrics) FetchError(key string) {
	m.fetchErrors.WithLabelValues(cache.Namespace(key)).Inc()
}

func (m *CacheMetrics) Expired(n int)       { m.expired.Add(float64(n)) }
func (m *CacheMetrics) OrphansPurged(n int) { m.orphansPurged.Add(float64(n)) }

// RegisterCacheGauges exposes the cache's live size and pending count.
func RegisterCacheGauges(reg prometheus.Registerer, c *cache.Cache) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "request_cache_entries",
			Help: "Entries currently stored in the request cache",
		}, func() float64 { return float64(c.Stats().CacheSize) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "request_cache_pending_requests",
			Help: "Upstream fetches currently in flight",
		}, func() float64 { return float64(c.Stats().PendingRequests) }),
	)
}
