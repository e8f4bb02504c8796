package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search index Prometheus metrics.
var (
	QueryPathTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogd",
			Name:      "query_path_total",
			Help:      "List and suggest queries by serving path",
		},
		[]string{"operation", "path"}, // path: "index" / "storage"
	)

	IndexSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogd",
			Name:      "index_sync_total",
			Help:      "Background index sync jobs processed",
		},
		[]string{"op", "status"}, // op: "upsert" / "delete", status: "ok" / "error"
	)

	IndexSyncDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "catalogd",
			Name:      "index_sync_dropped_total",
			Help:      "Index sync jobs dropped because the queue was full",
		},
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers Prometheus index metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryPathTotal)
	prometheus.MustRegister(IndexSyncTotal)
	prometheus.MustRegister(IndexSyncDroppedTotal)
	indexMetricsRegistered = true
}
