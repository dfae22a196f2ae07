package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	TriggerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "swing",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of API endpoints",
			Buckets:   []float64{.05, .1, .5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"endpoint"},
	)

	TriggerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swing",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by API endpoint and status",
		},
		[]string{"endpoint", "status"},
	)
)

// Register adds the API collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(TriggerLatency, TriggerErrors)
	})
}
