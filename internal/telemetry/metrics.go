package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowdeck/viewer/reactive"
)

// SchedulerMetrics instruments the reactive scheduler: a counter of
// effects run, a counter of effects that panicked, and a histogram of
// how deep a single flush's cascade went before draining.
type SchedulerMetrics struct {
	EffectsRun     prometheus.Counter
	EffectsErrored prometheus.Counter
	CascadeDepth   prometheus.Histogram
}

// NewSchedulerMetrics registers the scheduler's metrics against reg.
// Registration failures (e.g. a duplicate registration) panic — this
// only ever runs once at process startup.
func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	m := &SchedulerMetrics{
		EffectsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viewer_reactive_effects_run_total",
			Help: "Total number of effect runs across all flushes.",
		}),
		EffectsErrored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viewer_reactive_effects_errored_total",
			Help: "Total number of effect runs that panicked.",
		}),
		CascadeDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "viewer_reactive_cascade_depth",
			Help:    "Number of re-drain passes a single flush needed before the pending set was empty.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
	}
	reg.MustRegister(m.EffectsRun, m.EffectsErrored, m.CascadeDepth)
	return m
}

// InstrumentScheduler registers scheduler metrics against reg and points
// the reactive core's flush observer at them, so every completed flush
// adds its run/error counts and cascade depth. Call once at startup,
// alongside UseScheduler.
func InstrumentScheduler(reg prometheus.Registerer) *SchedulerMetrics {
	m := NewSchedulerMetrics(reg)
	reactive.SetFlushObserver(func(runs, errored, cascades int) {
		m.EffectsRun.Add(float64(runs))
		m.EffectsErrored.Add(float64(errored))
		if cascades > 0 {
			m.CascadeDepth.Observe(float64(cascades))
		}
	})
	return m
}

// QueryMetrics instruments the declarative query client: fetches started,
// deduped against an in-flight request, retried, and a latency histogram
// for completed fetches.
type QueryMetrics struct {
	FetchesStarted prometheus.Counter
	FetchesDeduped prometheus.Counter
	FetchesRetried prometheus.Counter
	FetchLatency   prometheus.Histogram
}

// NewQueryMetrics registers the query client's metrics against reg.
func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	m := &QueryMetrics{
		FetchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viewer_query_fetches_started_total",
			Help: "Total number of query fetches initiated.",
		}),
		FetchesDeduped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viewer_query_fetches_deduped_total",
			Help: "Total number of query fetches that attached to an already in-flight request instead of starting a new one.",
		}),
		FetchesRetried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viewer_query_fetches_retried_total",
			Help: "Total number of query fetch retry attempts.",
		}),
		FetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "viewer_query_fetch_latency_seconds",
			Help:    "Latency of completed (successful or exhausted) query fetches.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.FetchesStarted, m.FetchesDeduped, m.FetchesRetried, m.FetchLatency)
	return m
}

// NoopQueryMetrics is used when a query client is built without a
// registry: real counters, never registered, never scraped.
func NoopQueryMetrics() *QueryMetrics {
	return &QueryMetrics{
		FetchesStarted: prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_started"}),
		FetchesDeduped: prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_deduped"}),
		FetchesRetried: prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_retried"}),
		FetchLatency:   prometheus.NewHistogram(prometheus.HistogramOpts{Name: "noop_latency"}),
	}
}

// ObserveLatency is a small helper for "time this fetch" call sites.
func ObserveLatency(h prometheus.Histogram, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
