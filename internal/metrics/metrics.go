package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission, login and review outcomes used as label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics provides observability for the registry.
// Every collector is registered on its own registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Submissions      *prometheus.CounterVec
	Logins           *prometheus.CounterVec
	StatusChanges    *prometheus.CounterVec
	SessionsExpired  prometheus.Counter
	SubmitDuration   prometheus.Histogram
	RequestsInFlight prometheus.Gauge
}

// New creates a Metrics instance with all registry metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_submissions_total",
			Help: "Registration form submissions by outcome",
		}, []string{"outcome"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_logins_total",
			Help: "Family login attempts by outcome",
		}, []string{"outcome"}),
		StatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_status_changes_total",
			Help: "Administrative status changes by new status",
		}, []string{"status"}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_sessions_expired_total",
			Help: "Expired sessions removed by the cleanup job",
		}),
		SubmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_submit_duration_seconds",
			Help:    "Duration of registration submissions including file intake",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		RequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "registry_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// InstrumentInFlight tracks concurrent requests for next
func (m *Metrics) InstrumentInFlight(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerInFlight(m.RequestsInFlight, next)
}

// ObserveSubmission records a submission outcome and its duration.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmission(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

// ObserveLogin records a login outcome
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// ObserveStatusChange records a review decision
func (m *Metrics) ObserveStatusChange(status string) {
	if m == nil {
		return
	}
	m.StatusChanges.WithLabelValues(status).Inc()
}

// AddSessionsExpired records sessions removed by cleanup
func (m *Metrics) AddSessionsExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsExpired.Add(float64(n))
}
