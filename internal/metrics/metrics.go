package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one server. Each instance owns its registry so that
// several servers (e.g. in tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	SignatureChecks   *prometheus.CounterVec
	Logins            *prometheus.CounterVec
	SessionChecks     *prometheus.CounterVec
	ProxyResolutions  *prometheus.CounterVec
	Installs          *prometheus.CounterVec
	UpstreamDurations *prometheus.HistogramVec
	RateLimited       prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		SignatureChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_signature_checks_total",
			Help: "Signature verifications by scheme and outcome",
		}, []string{"scheme", "outcome"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_logins_total",
			Help: "Customer login attempts by outcome",
		}, []string{"outcome"}),
		SessionChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_session_checks_total",
			Help: "Session resolutions by outcome",
		}, []string{"outcome"}),
		ProxyResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_proxy_resolutions_total",
			Help: "App proxy identity resolutions by source",
		}, []string{"source"}),
		Installs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_installs_total",
			Help: "OAuth install callbacks by outcome",
		}, []string{"outcome"}),
		UpstreamDurations: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_upstream_duration_seconds",
			Help:    "Latency of calls to the commerce platform",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_rate_limited_total",
			Help: "Requests rejected by the login rate limiter",
		}),
	}
}

// Signature records the outcome of a signature check. Safe on a nil receiver.
func (m *Metrics) Signature(scheme, outcome string) {
	if m == nil {
		return
	}
	m.SignatureChecks.WithLabelValues(scheme, outcome).Inc()
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Session(outcome string) {
	if m == nil {
		return
	}
	m.SessionChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Proxy(source string) {
	if m == nil {
		return
	}
	m.ProxyResolutions.WithLabelValues(source).Inc()
}

func (m *Metrics) Install(outcome string) {
	if m == nil {
		return
	}
	m.Installs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RateLimit() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// ObserveUpstream returns a func that records the elapsed time for operation when called.
func (m *Metrics) ObserveUpstream(operation string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.UpstreamDurations.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
