// Package metrics holds the Prometheus collectors of the ledger service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shop_ledger"

// Metrics is safe to use through a nil pointer; every recorder is then a
// no-op.
type Metrics struct {
	registry *prometheus.Registry

	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	persists       *prometheus.CounterVec
	staleScopes    prometheus.Gauge
	unlocks        *prometheus.CounterVec
	lockouts       *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "actions_total",
			Help:      "Actions submitted to a ledger, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		actionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "submit_duration_seconds",
			Help:      "Time from submission to local apply, remote write included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		persists: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persist",
			Name:      "writes_total",
			Help:      "Debounced document writes, by outcome.",
		}, []string{"outcome"}),
		staleScopes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "persist",
			Name:      "stale_scopes",
			Help:      "Scopes whose in-memory state lost a version race and await reload.",
		}),
		unlocks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lockout",
			Name:      "attempts_total",
			Help:      "Unlock attempts, by outcome.",
		}, []string{"outcome"}),
		lockouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lockout",
			Name:      "locks_total",
			Help:      "Accounts locked, by escalation level applied.",
		}, []string{"level"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAction(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(kind, outcome).Inc()
	m.actionDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) ObservePersist(outcome string) {
	if m == nil {
		return
	}
	m.persists.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetStale(delta float64) {
	if m == nil {
		return
	}
	m.staleScopes.Add(delta)
}

func (m *Metrics) ObserveUnlock(outcome string) {
	if m == nil {
		return
	}
	m.unlocks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLockout(level int) {
	if m == nil {
		return
	}
	m.lockouts.WithLabelValues(strconv.Itoa(level)).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
