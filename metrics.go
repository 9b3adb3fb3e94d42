package hbkit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	opCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hbkit",
			Name:      "operations_total",
			Help:      "Counter of client operations by result.",
		}, []string{"op", "result"})

	opDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hbkit",
			Name:      "operation_duration_seconds",
			Help:      "Bucketed histogram of client operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		}, []string{"op"})
)

func init() {
	prometheus.MustRegister(opCounter)
	prometheus.MustRegister(opDuration)
}

// observe records one finished operation.
func observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	opCounter.WithLabelValues(op, result).Inc()
	opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
