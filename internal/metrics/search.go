package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider search Prometheus metrics.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "last30days",
			Name:      "provider_requests_total",
			Help:      "Total number of upstream search requests",
		},
		[]string{"provider", "model", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "last30days",
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream search request duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 45, 90, 180},
		},
		[]string{"provider", "model"},
	)

	ProviderItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "last30days",
			Name:      "provider_items_total",
			Help:      "Items collected per provider and pipeline stage",
		},
		[]string{"provider", "stage"}, // stage: search, retry, supplemental
	)

	ModelFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "last30days",
			Name:      "model_fallback_total",
			Help:      "Model fallbacks taken after access errors",
		},
		[]string{"provider"},
	)

	ModelCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "last30days",
			Name:      "model_cache_total",
			Help:      "Model resolution cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers provider search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderItemsTotal)
	prometheus.MustRegister(ModelFallbackTotal)
	prometheus.MustRegister(ModelCacheTotal)
	searchMetricsRegistered = true
}
