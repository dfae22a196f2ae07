package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal    *prometheus.CounterVec
	symbolsTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	swingScore   *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a Prometheus recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swing_pipeline_runs_total",
				Help: "Pipeline runs by final status",
			},
			[]string{"status"},
		),
		symbolsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swing_pipeline_symbols_total",
				Help: "Symbols processed per pipeline stage",
			},
			[]string{"stage", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swing_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		swingScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "swing_score",
				Help: "Latest swing score for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swing_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
	}
}

// RecordRun counts a finished run by status (completed, failed, skipped).
func (r *Recorder) RecordRun(status string) {
	r.runsTotal.WithLabelValues(status).Inc()
}

// RecordSymbol counts a symbol outcome for a stage.
func (r *Recorder) RecordSymbol(stage, result string) {
	r.symbolsTotal.WithLabelValues(stage, result).Inc()
}

// RecordSwingScore records the latest score for a symbol.
func (r *Recorder) RecordSwingScore(symbol string, score float64) {
	r.swingScore.WithLabelValues(symbol).Set(score)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
