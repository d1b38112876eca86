package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	QuoteRequestsCreated   prometheus.Counter
	QuoteResponsesCreated  prometheus.Counter
	AcceptOutcomes         *prometheus.CounterVec
	JoinRequestsProcessed  *prometheus.CounterVec
	NotificationsDelivered *prometheus.CounterVec
	HTTPRequests           *prometheus.CounterVec
	HTTPDuration           *prometheus.HistogramVec
	JobRuns                *prometheus.CounterVec
	JobDuration            *prometheus.HistogramVec
}

// New creates a registry with process collectors and all application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		QuoteRequestsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "freighthub_quote_requests_created_total",
			Help: "Total number of quote requests created",
		}),
		QuoteResponsesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "freighthub_quote_responses_created_total",
			Help: "Total number of quote responses submitted",
		}),
		AcceptOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "freighthub_quote_accept_total",
			Help: "Quote accept attempts by outcome",
		}, []string{"outcome"}),
		JoinRequestsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "freighthub_join_requests_processed_total",
			Help: "Join requests processed by action",
		}, []string{"action"}),
		NotificationsDelivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "freighthub_notifications_delivered_total",
			Help: "Notification deliveries by channel and outcome",
		}, []string{"channel", "outcome"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "freighthub_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "freighthub_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "freighthub_job_runs_total",
			Help: "Scheduled job runs by job and outcome",
		}, []string{"job", "outcome"}),
		JobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "freighthub_job_duration_seconds",
			Help:    "Scheduled job duration",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"job"}),
	}
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncQuoteRequestCreated() {
	if m == nil {
		return
	}
	m.QuoteRequestsCreated.Inc()
}

func (m *Metrics) IncQuoteResponseCreated() {
	if m == nil {
		return
	}
	m.QuoteResponsesCreated.Inc()
}

// ObserveAccept records an accept attempt. outcome is "accepted", "conflict",
// "forbidden", "not_found" or "error".
func (m *Metrics) ObserveAccept(outcome string) {
	if m == nil {
		return
	}
	m.AcceptOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncJoinRequestProcessed(action string) {
	if m == nil {
		return
	}
	m.JoinRequestsProcessed.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveDelivery(channel string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.NotificationsDelivered.WithLabelValues(channel, outcome).Inc()
}

// ObserveHTTP records one handled request.
// Call with time.Now() taken before the handler ran.
func (m *Metrics) ObserveHTTP(route, method, code string, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, code).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveJob(job string, panicked bool, start time.Time) {
	if m == nil {
		return
	}
	outcome := "ok"
	if panicked {
		outcome = "panic"
	}
	m.JobRuns.WithLabelValues(job, outcome).Inc()
	m.JobDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}
