package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches     *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	predictions prometheus.Counter
	cache       *prometheus.CounterVec
	model       *prometheus.GaugeVec
}

// New creates a recorder on the default registerer.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coincast_upstream_fetches_total",
				Help: "Upstream market data fetches by coin and result",
			},
			[]string{"coin", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coincast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coincast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		predictions: f.NewCounter(
			prometheus.CounterOpts{
				Name: "coincast_predictions_total",
				Help: "Total number of predictions served",
			},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coincast_proxy_cache_total",
				Help: "Proxy cache lookups by result",
			},
			[]string{"result"},
		),
		model: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coincast_model_parameter",
				Help: "Parameters of the currently loaded model",
			},
			[]string{"param"},
		),
	}
}

// RecordFetch records an upstream fetch outcome.
func (r *Recorder) RecordFetch(coin, result string) {
	r.fetches.WithLabelValues(coin, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordPrediction counts a served prediction.
func (r *Recorder) RecordPrediction() {
	r.predictions.Inc()
}

// RecordCache records a proxy cache hit or miss.
func (r *Recorder) RecordCache(result string) {
	r.cache.WithLabelValues(result).Inc()
}

// SetModel exposes the loaded model's parameters.
func (r *Recorder) SetModel(slope, intercept, r2 float64, samples int) {
	r.model.WithLabelValues("slope").Set(slope)
	r.model.WithLabelValues("intercept").Set(intercept)
	r.model.WithLabelValues("r2").Set(r2)
	r.model.WithLabelValues("samples").Set(float64(samples))
}

// Nop discards everything. Used by offline commands and tests.
type Nop struct{}

func (Nop) RecordFetch(string, string)              {}
func (Nop) RecordError(string)                      {}
func (Nop) RecordLatency(string, float64)           {}
func (Nop) RecordPrediction()                       {}
func (Nop) RecordCache(string)                      {}
func (Nop) SetModel(float64, float64, float64, int) {}
