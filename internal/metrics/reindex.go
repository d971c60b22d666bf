package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reindex Prometheus metrics.
var (
	ReindexPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reindex_pages_total",
			Help:      "Scroll pages processed by reindex runs",
		},
		[]string{"result"}, // "ok" / "failed" / "empty"
	)

	ReindexDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reindex_documents_total",
			Help:      "Documents written or rejected by reindex runs",
		},
		[]string{"result"}, // "indexed" / "failed"
	)

	ReindexRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reindex_run_duration_seconds",
			Help:      "Reindex run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900, 1800},
		},
	)
)
