package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Metrics holds the domain counters. A nil *Metrics records nothing.
type Metrics struct {
	bookingTransitions *prometheus.CounterVec
	paymentOperations  *prometheus.CounterVec
	webhookEvents      *prometheus.CounterVec
	jobRuns            *prometheus.CounterVec
}

// New creates the domain counters and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		bookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking status changes by source and target status.",
		}, []string{"from", "to"}),
		paymentOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_operations_total",
			Help: "Payment gateway calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Payment webhook events by type and outcome.",
		}, []string{"type", "outcome"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_runs_total",
			Help: "Scheduled sweep runs by job and outcome.",
		}, []string{"job", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.bookingTransitions, m.paymentOperations, m.webhookEvents, m.jobRuns} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

func (m *Metrics) BookingTransition(from, to string) {
	if m == nil {
		return
	}
	m.bookingTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) PaymentOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.paymentOperations.WithLabelValues(operation, outcome(err)).Inc()
}

func (m *Metrics) WebhookEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, outcome(err)).Inc()
}
