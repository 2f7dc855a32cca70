package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests can build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	transitionsTotal    *prometheus.CounterVec
	transitionRetries   *prometheus.CounterVec
	invariantViolations prometheus.Gauge
	httpReqTotal        *prometheus.CounterVec
	httpLatency         *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_transitions_total",
			Help: "Leave request operations by action and outcome",
		}, []string{"action", "outcome"}),
		transitionRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_transition_retries_total",
			Help: "Transactions retried after a concurrency error",
		}, []string{"action"}),
		invariantViolations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leave_ledger_invariant_violations",
			Help: "Balance rows failing the ledger invariant at the last audit",
		}),
		httpReqTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leave_http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) TransitionCompleted(action leave.Action, outcome string) {
	m.transitionsTotal.WithLabelValues(string(action), outcome).Inc()
}

func (m *Metrics) TransitionRetried(action leave.Action) {
	m.transitionRetries.WithLabelValues(string(action)).Inc()
}

// SetInvariantViolations records the size of the last audit result.
func (m *Metrics) SetInvariantViolations(n int) {
	m.invariantViolations.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests by their chi route pattern, so IDs in the
// path do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpReqTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
