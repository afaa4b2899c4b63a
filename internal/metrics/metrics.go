// Package metrics exposes indexer progress as Prometheus collectors.
// A nil *Engine is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Engine struct {
	registry *prometheus.Registry

	cursorVersion prometheus.Gauge
	transactions  *prometheus.CounterVec
	events        *prometheus.CounterVec
	decodeErrors  prometheus.Counter
	storeErrors   prometheus.Counter
	cycleDuration prometheus.Histogram
}

func NewEngine() *Engine {
	registry := prometheus.NewRegistry()
	e := &Engine{
		registry: registry,
		cursorVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "curvescope_cursor_version",
			Help: "Ledger version of the last processed transaction",
		}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curvescope_transactions_total",
			Help: "Transactions seen by the polling loop, split by relevance",
		}, []string{"relevant"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curvescope_events_total",
			Help: "Decoded launchpad events by kind",
		}, []string{"kind"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curvescope_decode_errors_total",
			Help: "Events skipped because they could not be decoded",
		}),
		storeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curvescope_store_errors_total",
			Help: "Derived-state writes that failed and were dropped",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "curvescope_cycle_seconds",
			Help:    "Duration of one polling cycle",
			Buckets: prometheus.DefBuckets,
		}),
	}
	registry.MustRegister(
		e.cursorVersion,
		e.transactions,
		e.events,
		e.decodeErrors,
		e.storeErrors,
		e.cycleDuration,
		prometheus.NewGoCollector(),
	)
	return e
}

// Handler serves the registry in the Prometheus exposition format.
func (e *Engine) Handler() http.Handler {
	if e == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (e *Engine) SetCursor(version uint64) {
	if e == nil {
		return
	}
	e.cursorVersion.Set(float64(version))
}

func (e *Engine) RecordTransaction(relevant bool) {
	if e == nil {
		return
	}
	e.transactions.WithLabelValues(strconv.FormatBool(relevant)).Inc()
}

func (e *Engine) RecordEvent(kind string) {
	if e == nil {
		return
	}
	e.events.WithLabelValues(kind).Inc()
}

func (e *Engine) RecordDecodeError() {
	if e == nil {
		return
	}
	e.decodeErrors.Inc()
}

func (e *Engine) RecordStoreError() {
	if e == nil {
		return
	}
	e.storeErrors.Inc()
}

func (e *Engine) ObserveCycle(d time.Duration) {
	if e == nil {
		return
	}
	e.cycleDuration.Observe(d.Seconds())
}
