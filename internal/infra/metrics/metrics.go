// Package metrics exposes Prometheus counters for the rental ledger and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"librarian/internal/domain/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "librarian"

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	rentals         *prometheus.CounterVec
	logins          *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ service.LedgerMetrics = (*Metrics)(nil)

// New creates and registers the service metrics plus Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rentals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rental_events_total",
				Help:      "Rental lifecycle events by kind",
			},
			[]string{"event"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.rentals,
		m.logins,
		m.requests,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) RentalCreated() {
	m.rentals.WithLabelValues("created").Inc()
}

func (m *Metrics) RentalFinished(fined bool) {
	if fined {
		m.rentals.WithLabelValues("finished_with_fine").Inc()

		return
	}
	m.rentals.WithLabelValues("finished").Inc()
}

// RentalConflict counts create attempts rejected because the copy was out.
func (m *Metrics) RentalConflict() {
	m.rentals.WithLabelValues("conflict").Inc()
}

func (m *Metrics) LoginAttempt(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Noop discards every event.
type Noop struct{}

var _ service.LedgerMetrics = Noop{}

func (Noop) RentalCreated()                                    {}
func (Noop) RentalFinished(bool)                               {}
func (Noop) RentalConflict()                                   {}
func (Noop) LoginAttempt(string)                               {}
func (Noop) ObserveRequest(string, string, int, time.Duration) {}
