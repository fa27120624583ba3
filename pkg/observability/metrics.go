// Package observability holds the Prometheus metrics and OpenTelemetry
// tracing setup.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	submissionsTotal *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "safesite_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "safesite_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		submissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "safesite_submissions_total",
			Help: "Checklist submissions by analysis mode and outcome.",
		}, []string{"mode", "outcome"}),
		analysisDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "safesite_analysis_duration_seconds",
			Help:    "AI analysis call latency by collaborator.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"collaborator"}),
	}
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSubmission records one submission pipeline run.
func (m *Metrics) RecordSubmission(mode string, outcome string) {
	m.submissionsTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordAnalysis records the latency of one collaborator call.
func (m *Metrics) RecordAnalysis(collaborator string, duration time.Duration) {
	m.analysisDuration.WithLabelValues(collaborator).Observe(duration.Seconds())
}

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
