// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Recorder counts session lifecycle operations by outcome
type Recorder interface {
	AuthOperation(operation, outcome string)
}

// Registry owns a private Prometheus registry so tests can build as many as
// they like.
type Registry struct {
	reg        *prometheus.Registry
	authOps    *prometheus.CounterVec
	httpReqs   *prometheus.CounterVec
	httpTiming *prometheus.HistogramVec
}

var _ Recorder = (*Registry)(nil)

func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		authOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_auth_operations_total",
			Help: "Session lifecycle operations by outcome.",
		}, []string{"operation", "outcome"}),
		httpReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		httpTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studio_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	r.reg.MustRegister(
		r.authOps,
		r.httpReqs,
		r.httpTiming,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Registry) AuthOperation(operation, outcome string) {
	r.authOps.WithLabelValues(operation, outcome).Inc()
}

// HTTPRequest records one served request
func (r *Registry) HTTPRequest(route, code string, seconds float64) {
	r.httpReqs.WithLabelValues(route, code).Inc()
	r.httpTiming.WithLabelValues(route).Observe(seconds)
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer is exposed for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Nop discards everything
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) AuthOperation(string, string) {}
