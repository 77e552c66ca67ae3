package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DatabaseQueryLatency records query latency bucketed by statement kind.
var DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "quayside_database_query_latency_seconds",
	Help:    "Database query latency in seconds",
	Buckets: prometheus.DefBuckets,
}, []string{"operation"})

// ObserveQuery records the latency of a completed query. The operation label
// is derived from the statement's leading keyword.
func ObserveQuery(sql string, elapsed time.Duration) {
	op := "other"
	if i := strings.IndexByte(sql, ' '); i > 0 {
		switch strings.ToUpper(sql[:i]) {
		case "SELECT":
			op = "select"
		case "INSERT":
			op = "insert"
		case "UPDATE":
			op = "update"
		case "DELETE":
			op = "delete"
		}
	}
	DatabaseQueryLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}
