// Package metrics exposes Prometheus instrumentation for the API server and
// the scoring backend client.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/credit-cli/pkg/backend"
)

const namespace = "credit"

// Metrics holds the collectors registered on one registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	BackendRequests    *prometheus.CounterVec
	BackendDuration    *prometheus.HistogramVec
	ScoresComputed     *prometheus.CounterVec
	OnboardingSessions prometheus.Gauge
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		BackendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Scoring backend calls by operation and outcome.",
		}, []string{"op", "outcome"}),

		BackendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Scoring backend latency by operation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),

		ScoresComputed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_computed_total",
			Help:      "Scores produced by source and risk level.",
		}, []string{"source", "risk_level"}),

		OnboardingSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "onboarding_sessions",
			Help:      "Live onboarding wizard sessions.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, statusLabel(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveScore records a produced score.
func (m *Metrics) ObserveScore(source, riskLevel string) {
	m.ScoresComputed.WithLabelValues(source, riskLevel).Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// InstrumentBackend wraps a backend client so every call is counted and timed.
func (m *Metrics) InstrumentBackend(c backend.Client) backend.Client {
	return &instrumentedClient{next: c, m: m}
}

type instrumentedClient struct {
	next backend.Client
	m    *Metrics
}

func (c *instrumentedClient) History(ctx context.Context) (*backend.HistoryResponse, error) {
	start := time.Now()
	resp, err := c.next.History(ctx)
	c.observe("history", start, err)
	return resp, err
}

func (c *instrumentedClient) Calculate(ctx context.Context, req backend.CalculateRequest) (*backend.CalculateResponse, error) {
	start := time.Now()
	resp, err := c.next.Calculate(ctx, req)
	c.observe("calculate", start, err)
	return resp, err
}

func (c *instrumentedClient) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.m.BackendRequests.WithLabelValues(op, outcome).Inc()
	c.m.BackendDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
