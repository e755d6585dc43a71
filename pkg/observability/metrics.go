// Package observability exposes the engine's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the engine-level Prometheus collectors.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	CandidatesScored prometheus.Histogram
	SemanticDegraded prometheus.Counter
}

// NewMetrics registers the engine collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Recommendation requests by operation and status.",
		}, []string{"operation", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "Recommendation pipeline latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		CandidatesScored: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommend_candidates_scored",
			Help:    "Corpus candidates scored per request.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		}),
		SemanticDegraded: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommend_semantic_degraded_total",
			Help: "Requests served without the embedding collaborator.",
		}),
	}
}
