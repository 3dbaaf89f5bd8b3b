// Package metrics exposes Prometheus collectors for HTTP traffic and domain events.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eco"

// Metrics holds every collector on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	Registrations     prometheus.Counter
	Logins            *prometheus.CounterVec
	EcosCreated       prometheus.Counter
	SussurrosCreated  prometheus.Counter
	CodinomeResults   *prometheus.CounterVec
	ResetRequests     prometheus.Counter
	PasswordResets    prometheus.Counter
	RateLimitRejected *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count all http requests by status code, method and path.",
		}, []string{"status_code", "method", "path"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of all HTTP requests by status code, method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status_code", "method", "path"}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Accounts created.",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		EcosCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ecos_created_total",
			Help:      "Ecos published.",
		}),
		SussurrosCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sussurros_created_total",
			Help:      "Sussurros published.",
		}),
		CodinomeResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codinome_generations_total",
			Help:      "Codinome generation requests by result.",
		}, []string{"result"}),
		ResetRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_reset_requests_total",
			Help:      "Forgot-password requests accepted.",
		}),
		PasswordResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_resets_total",
			Help:      "Passwords changed through a reset token.",
		}),
		RateLimitRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by a rate limiter.",
		}, []string{"limiter"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.Registrations,
		m.Logins,
		m.EcosCreated,
		m.SussurrosCreated,
		m.CodinomeResults,
		m.ResetRequests,
		m.PasswordResets,
		m.RateLimitRejected,
	)
	return m
}

// Middleware records every request. Unmatched routes share one path label.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requests.WithLabelValues(status, c.Request.Method, path).Inc()
		m.duration.WithLabelValues(status, c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// The recorders below accept a nil *Metrics so handlers can run without a registry.

func (m *Metrics) RecordRegistration() {
	if m != nil {
		m.Registrations.Inc()
	}
}

func (m *Metrics) RecordLogin(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) RecordEco() {
	if m != nil {
		m.EcosCreated.Inc()
	}
}

func (m *Metrics) RecordSussurro() {
	if m != nil {
		m.SussurrosCreated.Inc()
	}
}

func (m *Metrics) RecordCodinome(result string) {
	if m != nil {
		m.CodinomeResults.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) RecordResetRequest() {
	if m != nil {
		m.ResetRequests.Inc()
	}
}

func (m *Metrics) RecordPasswordReset() {
	if m != nil {
		m.PasswordResets.Inc()
	}
}

func (m *Metrics) RecordRateLimited(limiter string) {
	if m != nil {
		m.RateLimitRejected.WithLabelValues(limiter).Inc()
	}
}
