// Package metrics exposes Prometheus counters for requests, logins and mail.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the rest of the code depends on.
type Recorder interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
	RecordAuthAttempt(method, outcome string)
	RecordMailDelivery(kind, outcome string)
}

type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	authAttempts  *prometheus.CounterVec
	mailDelivered *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mastersight_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mastersight_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mastersight_auth_attempts_total",
			Help: "Login attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		mailDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mastersight_mail_deliveries_total",
			Help: "Outbound mail attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}

	reg.MustRegister(c.httpRequests, c.httpDuration, c.authAttempts, c.mailDelivered)
	return c
}

// NewRegistry returns a registry preloaded with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (c *Collector) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordAuthAttempt(method, outcome string) {
	c.authAttempts.WithLabelValues(method, outcome).Inc()
}

func (c *Collector) RecordMailDelivery(kind, outcome string) {
	c.mailDelivered.WithLabelValues(kind, outcome).Inc()
}

// Handler returns the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything; used where metrics are disabled and in tests.
type Nop struct{}

func (Nop) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordAuthAttempt(string, string)                      {}
func (Nop) RecordMailDelivery(string, string)                     {}
