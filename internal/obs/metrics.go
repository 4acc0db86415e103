package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SearchesTotal   *prometheus.CounterVec
	CacheHitsTotal  *prometheus.CounterVec
	ProviderErrors  *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
	Registry        *prometheus.Registry
}

// NewMetrics creates and registers the collectors on the given
// registry. Label "domain" is flights or hotels.
func NewMetrics(p *prometheus.Registry) *Metrics {
	m := &Metrics{
		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "travelsearch_searches_total",
			Help: "Total number of search invocations",
		}, []string{"domain"}),
		CacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "travelsearch_cache_hits_total",
			Help: "Search responses served from cache",
		}, []string{"domain"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "travelsearch_provider_errors_total",
			Help: "Failed provider dispatches",
		}, []string{"provider"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "travelsearch_provider_latency_seconds",
			Help:    "Upstream provider search latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		Registry: p,
	}

	p.MustRegister(
		m.SearchesTotal,
		m.CacheHitsTotal,
		m.ProviderErrors,
		m.ProviderLatency,
	)

	return m
}

func (m *Metrics) IncSearches(domain string) {
	m.SearchesTotal.WithLabelValues(domain).Inc()
}

func (m *Metrics) IncCacheHits(domain string) {
	m.CacheHitsTotal.WithLabelValues(domain).Inc()
}

func (m *Metrics) IncProviderFailure(provider string) {
	m.ProviderErrors.WithLabelValues(provider).Inc()
}

func (m *Metrics) ObserveProviderLatency(provider string, seconds float64) {
	m.ProviderLatency.WithLabelValues(provider).Observe(seconds)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
