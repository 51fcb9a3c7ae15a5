package metrics

import (
	domain "ebridge-portal/internal/domain/entity/proposals"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the portal's Prometheus collectors.
type Metrics struct {
	decisions    *prometheus.CounterVec
	stalePending prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "proposal_decisions_total",
			Help:      "Proposal decision attempts by requested status and outcome.",
		}, []string{"status", "outcome"}),
		stalePending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "proposals_stale_pending",
			Help:      "Pending proposals whose deadline has passed.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.decisions, m.stalePending, m.httpRequests, m.httpDuration)
	return m
}

func (m *Metrics) ObserveDecision(status domain.Status, outcome string) {
	m.decisions.WithLabelValues(string(status), outcome).Inc()
}

func (m *Metrics) SetStalePending(n int) {
	m.stalePending.Set(float64(n))
}

func (m *Metrics) ObserveRequest(method, route, code string, seconds float64) {
	m.httpRequests.WithLabelValues(method, route, code).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}
