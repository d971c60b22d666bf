package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reference resolution Prometheus metrics.
var (
	ReferenceFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reference_fetches_total",
			Help:      "Referenced documents fetched from the store",
		},
		[]string{"strategy", "result"}, // "direct" / "find_one"; "found" / "missing" / "error"
	)

	ReferenceCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reference_cache_total",
			Help:      "Reference cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)
