package transfer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	copiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hbkit",
			Subsystem: "transfer",
			Name:      "copies_total",
			Help:      "Counter of file copies.",
		}, []string{"policy", "result"})

	copyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hbkit",
			Subsystem: "transfer",
			Name:      "copy_duration_seconds",
			Help:      "Bucketed histogram of file copy duration.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 18),
		}, []string{"policy"})

	bytesCopied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hbkit",
			Subsystem: "transfer",
			Name:      "bytes_total",
			Help:      "Bytes written to destinations.",
		})
)

func init() {
	prometheus.MustRegister(copiesTotal)
	prometheus.MustRegister(copyDuration)
	prometheus.MustRegister(bytesCopied)
}

func observe(p Policy, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	copiesTotal.WithLabelValues(p.String(), result).Inc()
	copyDuration.WithLabelValues(p.String()).Observe(time.Since(start).Seconds())
}
