package observability

import (
	"time"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the coach.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	engineRuns      *prometheus.CounterVec
	engineErrors    *prometheus.CounterVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	insightsEmitted prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coach_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		engineRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_engine_runs_total",
				Help: "Total analysis engine invocations.",
			},
			[]string{"engine"},
		),
		engineErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_engine_errors_total",
				Help: "Total analysis engine failures.",
			},
			[]string{"engine"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		insightsEmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "coach_insights_emitted_total",
				Help: "Total insights returned to callers.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrEngineRun increments the run counter for an engine.
func (m *Metrics) IncrEngineRun(engine string) {
	m.engineRuns.WithLabelValues(engine).Inc()
}

// IncrEngineError increments the error counter for an engine.
func (m *Metrics) IncrEngineError(engine string) {
	m.engineErrors.WithLabelValues(engine).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// AddInsightsEmitted records insights returned to a caller.
func (m *Metrics) AddInsightsEmitted(n int) {
	m.insightsEmitted.Add(float64(n))
}

// GetEngineSnapshot returns a snapshot of engine counters suitable for the
// GET /v1/metrics/engines endpoint.
func (m *Metrics) GetEngineSnapshot() *domain.EngineMetrics {
	subscriptionRuns := getCounterValue(m.engineRuns, "subscriptions")
	insightRuns := getCounterValue(m.engineRuns, "insights")
	goalRuns := getCounterValue(m.engineRuns, "goals")

	totalRuns := subscriptionRuns + insightRuns + goalRuns
	totalErrors := getCounterValue(m.engineErrors, "subscriptions") +
		getCounterValue(m.engineErrors, "insights") +
		getCounterValue(m.engineErrors, "goals")

	errorRate := 0.0
	if totalRuns > 0 {
		errorRate = totalErrors / totalRuns
	}

	hits := getCounterValue(m.cacheHits, "analysis")
	misses := getCounterValue(m.cacheMisses, "analysis")
	cacheHitRate := 0.0
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.EngineMetrics{
		SubscriptionRuns: subscriptionRuns,
		InsightRuns:      insightRuns,
		GoalRuns:         goalRuns,
		ErrorRate:        errorRate,
		CacheHitRate:     cacheHitRate,
		Period:           "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
