package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SyncMetrics holds all Prometheus metrics for the sync engine.
type SyncMetrics struct {
	RunsTotal         *prometheus.CounterVec
	RecordsTotal      *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
	ActiveJobs        prometheus.Gauge
	APIKeyCacheHits   prometheus.Counter
	APIKeyCacheMisses prometheus.Counter
}

// NewSyncMetrics initializes and registers the Prometheus metrics.
func NewSyncMetrics() *SyncMetrics {
	return &SyncMetrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storesync",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Total number of sync runs by kind and terminal status.",
		}, []string{"kind", "status"}),
		RecordsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storesync",
			Subsystem: "sync",
			Name:      "records_total",
			Help:      "Total number of reconciled records by kind and outcome.",
		}, []string{"kind", "outcome"}), // outcome: created, updated, skipped
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storesync",
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Duration of sync runs by kind.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"kind"}),
		ActiveJobs: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "storesync",
			Subsystem: "scheduler",
			Name:      "active_jobs",
			Help:      "Number of registered per-tenant sync jobs.",
		}),
		APIKeyCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "storesync",
			Subsystem: "auth",
			Name:      "api_key_cache_hits_total",
			Help:      "Total number of API key cache hits.",
		}),
		APIKeyCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "storesync",
			Subsystem: "auth",
			Name:      "api_key_cache_misses_total",
			Help:      "Total number of API key cache misses.",
		}),
	}
}
