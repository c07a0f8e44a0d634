package metrics

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry of the api. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry             *prometheus.Registry
	handler              http.Handler
	requestDuration      *prometheus.HistogramVec
	requestTotal         *prometheus.CounterVec
	sessionsIssued       prometheus.Counter
	sessionsRevoked      prometheus.Counter
	submissions          *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
	rejectedFieldAccess  prometheus.Counter
	rateLimited          *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	sessionsIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autosign_sessions_issued_total",
		Help: "Signing sessions issued",
	})

	sessionsRevoked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autosign_sessions_revoked_total",
		Help: "Pending signing sessions replaced by a newer link",
	})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autosign_submissions_total",
		Help: "Submission attempts by outcome",
	}, []string{"result"})

	notificationFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autosign_notification_failures_total",
		Help: "Invitations that could not be handed to the dispatcher",
	}, []string{"channel"})

	rejectedFieldAccess := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autosign_rejected_field_access_total",
		Help: "Writes to fields not visible to the session",
	})

	rateLimited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"scope"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, sessionsIssued, sessionsRevoked, submissions,
		notificationFailures, rejectedFieldAccess, rateLimited, goroutines)

	return &Metrics{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		sessionsIssued:       sessionsIssued,
		sessionsRevoked:      sessionsRevoked,
		submissions:          submissions,
		notificationFailures: notificationFailures,
		rejectedFieldAccess:  rejectedFieldAccess,
		rateLimited:          rateLimited,
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

func (m *Metrics) SessionsIssued(issued, revoked int) {
	if m == nil {
		return
	}
	m.sessionsIssued.Add(float64(issued))
	m.sessionsRevoked.Add(float64(revoked))
}

func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) NotificationFailed(channel string) {
	if m == nil {
		return
	}
	m.notificationFailures.WithLabelValues(channel).Inc()
}

func (m *Metrics) RejectedFieldAccess() {
	if m == nil {
		return
	}
	m.rejectedFieldAccess.Inc()
}

func (m *Metrics) RateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(scope).Inc()
}
