// Package metrics exposes Prometheus instrumentation for the HTTP API, the
// stage pipeline and the stuck-candidate sweep.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

const namespace = "tracker"

// Metrics holds every collector the service records to. Recording methods
// are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	stageTransitions    *prometheus.CounterVec
	transitionRejected  *prometheus.CounterVec
	stuckCandidates     prometheus.Gauge
	searchRequests      *prometheus.CounterVec
	refreshTokensPurged prometheus.Counter
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		stageTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_transitions_total",
			Help:      "Committed candidate stage moves by source and target stage.",
		}, []string{"from", "to"}),
		transitionRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_transition_rejections_total",
			Help:      "Rejected stage moves by reason.",
		}, []string{"reason"}),
		stuckCandidates: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stuck_candidates",
			Help:      "Candidates that have stayed in their stage longer than the stuck threshold.",
		}),
		searchRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Natural-language searches by parser used.",
		}, []string{"parser"}),
		refreshTokensPurged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "refresh_tokens_purged_total",
			Help:      "Expired refresh tokens removed by the sweep.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// StageMoved records a committed transition.
func (m *Metrics) StageMoved(from, to domain.Stage) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// TransitionRejected records a refused stage move.
func (m *Metrics) TransitionRejected(reason string) {
	if m == nil {
		return
	}
	m.transitionRejected.WithLabelValues(reason).Inc()
}

// SetStuckCandidates sets the current stuck-candidate count.
func (m *Metrics) SetStuckCandidates(n int) {
	if m == nil {
		return
	}
	m.stuckCandidates.Set(float64(n))
}

// SearchServed records which parser answered a search.
func (m *Metrics) SearchServed(parser string) {
	if m == nil {
		return
	}
	m.searchRequests.WithLabelValues(parser).Inc()
}

// RefreshTokensPurged adds to the purged refresh token count.
func (m *Metrics) RefreshTokensPurged(n int64) {
	if m == nil {
		return
	}
	m.refreshTokensPurged.Add(float64(n))
}
