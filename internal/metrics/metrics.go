// Package metrics exposes prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phenrril/stockroom/internal/domain"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	shipmentTransitions *prometheus.CounterVec
	ordersCreated       *prometheus.CounterVec
	orderTotals         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockroom_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockroom_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		shipmentTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockroom_shipment_transitions_total",
				Help: "Shipment departure/arrival validations by outcome",
			},
			[]string{"transition", "outcome"},
		),
		ordersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockroom_orders_total",
				Help: "Order placements by currency and outcome",
			},
			[]string{"currency", "outcome"},
		),
		orderTotals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockroom_order_amount_total",
				Help: "Sum of placed order totals in order currency",
			},
			[]string{"currency"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.shipmentTransitions,
		m.ordersCreated,
		m.orderTotals,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func (m *Metrics) ObserveTransition(transition string, err error) {
	if m == nil {
		return
	}
	m.shipmentTransitions.WithLabelValues(transition, outcome(err)).Inc()
}

func (m *Metrics) ObserveOrder(currency string, total float64, err error) {
	if m == nil {
		return
	}
	m.ordersCreated.WithLabelValues(currency, outcome(err)).Inc()
	if err == nil {
		m.orderTotals.WithLabelValues(currency).Add(total)
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := domain.CodeOf(err); code != "" {
		return code
	}
	return "error"
}
