package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	recommendations *prometheus.CounterVec
	actions         *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	runDuration     prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		recommendations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_recommendations_total",
				Help: "Recommendations produced, by symbol and action",
			},
			[]string{"symbol", "action"},
		),
		actions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_actions_total",
				Help: "Sized actions produced, by symbol, kind and reason",
			},
			[]string{"symbol", "kind", "reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_recommendation_cache_lookups_total",
				Help: "Recommendation cache lookups, by result",
			},
			[]string{"result"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockpilot_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		runDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockpilot_run_duration_seconds",
				Help:    "Duration of a full analysis run in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordRecommendation records a produced recommendation.
func (r *Recorder) RecordRecommendation(symbol, action string) {
	r.recommendations.WithLabelValues(symbol, action).Inc()
}

// RecordAction records a sized action.
func (r *Recorder) RecordAction(symbol, kind, reason string) {
	if reason == "" {
		reason = "none"
	}
	r.actions.WithLabelValues(symbol, kind, reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheHit records a recommendation cache lookup outcome.
func (r *Recorder) RecordCacheHit(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordRunDuration records the duration of a full run in seconds.
func (r *Recorder) RecordRunDuration(seconds float64) {
	r.runDuration.Observe(seconds)
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// Handler exposes the default registry for a /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
