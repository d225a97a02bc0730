package dating

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entryOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dating_entry_operations_total",
			Help: "Entry repository operations by kind and result",
		},
		[]string{"op", "result"},
	)

	entryOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dating_entry_operation_seconds",
			Help:    "Latency of entry repository operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func recordOp(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	entryOpsTotal.WithLabelValues(op, result).Inc()
	entryOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
