// Package metrics exposes Prometheus collectors for invitation generation and
// attendance verification. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tcninvite"

// Metrics owns a registry and the service's collectors.
type Metrics struct {
	reg *prometheus.Registry

	generated       *prometheus.CounterVec
	persistFailures prometheus.Counter
	renderFailures  prometheus.Counter
	renderSeconds   prometheus.Histogram
	verifications   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
}

// New registers every collector on a fresh registry, plus Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_generated_total",
			Help:      "Flyers generated, by design.",
		}, []string{"design"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitation_persist_failures_total",
			Help:      "Invitation inserts that failed during generation.",
		}),
		renderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flyer_render_failures_total",
			Help:      "Flyer renders that failed.",
		}),
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flyer_render_seconds",
			Help:      "Flyer render duration.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Attendance verification attempts, by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status class.",
		}, []string{"method", "class"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.generated,
		m.persistFailures,
		m.renderFailures,
		m.renderSeconds,
		m.verifications,
		m.httpRequests,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) InvitationGenerated(design string) {
	if m != nil {
		m.generated.WithLabelValues(design).Inc()
	}
}

func (m *Metrics) PersistFailed() {
	if m != nil {
		m.persistFailures.Inc()
	}
}

func (m *Metrics) RenderFailed() {
	if m != nil {
		m.renderFailures.Inc()
	}
}

func (m *Metrics) ObserveRender(d time.Duration) {
	if m != nil {
		m.renderSeconds.Observe(d.Seconds())
	}
}

// ObserveVerification implements invitation.Observer.
func (m *Metrics) ObserveVerification(outcome string) {
	if m != nil {
		m.verifications.WithLabelValues(outcome).Inc()
	}
}

// ObserveRequest counts an HTTP response.
func (m *Metrics) ObserveRequest(method, class string) {
	if m != nil {
		m.httpRequests.WithLabelValues(method, class).Inc()
	}
}
