// Package metrics holds the Prometheus collectors shared by the backend and the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	httpDuration     *prometheus.HistogramVec
	suggestLookups   *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		suggestLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather",
			Name:      "suggest_lookups_total",
			Help:      "Suggestion lookups by component and outcome.",
		}, []string{"component", "outcome"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather",
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the upstream weather API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
	}
	reg.MustRegister(m.httpDuration, m.suggestLookups, m.upstreamRequests)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records the duration of a served request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// SuggestLookup counts one suggestion lookup outcome (hit, miss, short, superseded, failed)
func (m *Metrics) SuggestLookup(component, outcome string) {
	if m == nil {
		return
	}
	m.suggestLookups.WithLabelValues(component, outcome).Inc()
}

// UpstreamRequest counts one upstream call outcome (ok, error)
func (m *Metrics) UpstreamRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}
