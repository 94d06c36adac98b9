// Package metrics holds the Prometheus collectors shared by the API client
// and the development server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rubberstock"

// Collector records outbound API calls and inbound development API requests.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry        *prometheus.Registry
	clientRequests  *prometheus.CounterVec
	clientDuration  *prometheus.HistogramVec
	serverRequests  *prometheus.CounterVec
	orderPersistErr prometheus.Counter
}

// New builds a Collector backed by its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		clientRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests issued to the stock API, by resource, method and outcome.",
		}, []string{"resource", "method", "outcome"}),
		clientDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests issued to the stock API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
		serverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Requests served by the development API, by route and status code.",
		}, []string{"route", "code"}),
		orderPersistErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "persist_failures_total",
			Help:      "Failed reads or writes of the saved color order.",
		}),
	}
	c.registry.MustRegister(
		c.clientRequests,
		c.clientDuration,
		c.serverRequests,
		c.orderPersistErr,
		collectors.NewGoCollector(),
	)
	return c
}

// ObserveClient records one completed outbound call.
func (c *Collector) ObserveClient(resource, method, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.clientRequests.WithLabelValues(resource, method, outcome).Inc()
	c.clientDuration.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}

// ObserveServer records one served request.
func (c *Collector) ObserveServer(route, code string) {
	if c == nil {
		return
	}
	c.serverRequests.WithLabelValues(route, code).Inc()
}

// OrderPersistFailed counts a failed access to the saved color order.
func (c *Collector) OrderPersistFailed() {
	if c == nil {
		return
	}
	c.orderPersistErr.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
