package metrics

import "github.com/prometheus/client_golang/prometheus"

// StaffMetrics counts record-service operations.
type StaffMetrics struct {
	operations *prometheus.CounterVec
}

// NewStaffMetrics registers the staff operation counters on reg.
func NewStaffMetrics(reg prometheus.Registerer) *StaffMetrics {
	m := &StaffMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicadmin",
			Subsystem: "staff",
			Name:      "operations_total",
			Help:      "Staff record operations by entity, operation and outcome",
		}, []string{"entity", "operation", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operations)
	return m
}

// ObserveOperation records one operation outcome, e.g. ("doctor", "create", "ok").
func (m *StaffMetrics) ObserveOperation(entity, operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(entity, operation, outcome).Inc()
}

// AuthMetrics counts login attempts.
type AuthMetrics struct {
	logins *prometheus.CounterVec
}

// NewAuthMetrics registers the admin login counters on reg.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicadmin",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Admin login attempts by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.logins)
	return m
}

func (m *AuthMetrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// HTTPMetrics tracks request latency per route pattern.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the request latency histogram on reg, or the default registerer when reg is nil.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicadmin",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method, route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.duration)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(method, route, status).Observe(seconds)
}
