package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outbound-call Prometheus metrics: the search engine and the embedding
// microservice are the only two network dependencies of a query.
var (
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "search",
			Name:      "engine_requests_total",
			Help:      "Total number of search engine requests",
		},
		[]string{"index", "status"},
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "search",
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"index"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "search",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding service requests",
		},
		[]string{"endpoint", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "search",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding service request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"endpoint"},
	)
)

var externalMetricsRegistered bool

// RegisterExternalMetrics registers the outbound-call metrics. Must be
// called once from main.
func RegisterExternalMetrics() {
	if externalMetricsRegistered {
		return
	}
	prometheus.MustRegister(EngineRequestsTotal)
	prometheus.MustRegister(EngineRequestDuration)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	externalMetricsRegistered = true
}
