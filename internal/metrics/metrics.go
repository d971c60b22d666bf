// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mongoes"

var registerOnce sync.Once

// Register adds every collector to the default registry. Repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			httpInFlight,
			ReferenceFetchesTotal,
			ReferenceCacheTotal,
			ReindexPagesTotal,
			ReindexDocumentsTotal,
			ReindexRunDuration,
		)
	})
}
