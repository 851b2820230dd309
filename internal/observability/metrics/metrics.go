package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PortalMetrics exposes counters/histograms for portal flows.
type PortalMetrics struct {
	accessDecisions *prometheus.CounterVec
	wizardActions   *prometheus.CounterVec
	bookings        *prometheus.CounterVec
	rateLimited     prometheus.Counter
	backendLatency  *prometheus.HistogramVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		accessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "portal",
			Name:      "access_decisions_total",
			Help:      "Route guard decisions by route and outcome",
		}, []string{"route", "outcome"}),
		wizardActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "portal",
			Name:      "wizard_actions_total",
			Help:      "Booking wizard actions by result",
		}, []string{"action", "result"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "portal",
			Name:      "bookings_total",
			Help:      "Appointment submissions by result",
		}, []string{"department", "result"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "portal",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of clinic backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.accessDecisions, m.wizardActions, m.bookings, m.rateLimited, m.backendLatency)
	return m
}

func (m *PortalMetrics) ObserveAccess(route, outcome string) {
	if m == nil {
		return
	}
	m.accessDecisions.WithLabelValues(route, outcome).Inc()
}

func (m *PortalMetrics) ObserveWizardAction(action string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.wizardActions.WithLabelValues(action, result).Inc()
}

func (m *PortalMetrics) ObserveBooking(department string, succeeded bool) {
	if m == nil {
		return
	}
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	m.bookings.WithLabelValues(department, result).Inc()
}

func (m *PortalMetrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// ObserveBackendRequest records one clinic backend call. A zero status means
// the request never got a response.
func (m *PortalMetrics) ObserveBackendRequest(op string, status int, seconds float64) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.backendLatency.WithLabelValues(op, label).Observe(seconds)
}
