// Package metrics exposes Prometheus instrumentation for amortization runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "amortizer"

// Outcome labels for Runs.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeDiverged = "diverged"
	OutcomeCached   = "cached"
	OutcomeFailed   = "failed"
)

// Metrics holds the collectors registered on its own registry, so tests can
// create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	Runs        *prometheus.CounterVec
	Periods     prometheus.Histogram
	Duration    prometheus.Histogram
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	Purged      prometheus.Counter
	RateLimited prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Amortization runs by outcome.",
		}, []string{"outcome"}),
		Periods: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schedule_periods",
			Help:      "Number of payment periods in computed schedules.",
			Buckets:   []float64{12, 36, 60, 120, 240, 360, 720, 1500, 3000},
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time spent computing a schedule.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Schedule cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Schedule cache misses.",
		}),
		Purged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_purged_total",
			Help:      "Stored schedules removed by the retention job.",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "API requests rejected by the rate limiter.",
		}),
	}
}

// ObserveRun records a successful computation of a schedule with the given
// number of periods.
func (m *Metrics) ObserveRun(periods int, elapsed time.Duration) {
	m.Runs.WithLabelValues(OutcomeOK).Inc()
	m.Periods.Observe(float64(periods))
	m.Duration.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
