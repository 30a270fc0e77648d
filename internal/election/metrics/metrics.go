package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the election module.
// Tracks ballot lifecycle counts and critical path durations.
type Metrics struct {
	BallotsIssued      prometheus.Counter
	BallotsCounted     prometheus.Counter
	BallotsRejected    *prometheus.CounterVec
	BallotsInvalidated prometheus.Counter
	FraudDetected      prometheus.Counter
	CountDuration      prometheus.Histogram
	IssueDuration      prometheus.Histogram
}

// New creates a new Metrics instance with all election module metrics registered.
func New() *Metrics {
	return &Metrics{
		BallotsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_ballots_issued_total",
			Help: "Total number of ballots issued",
		}),
		BallotsCounted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_ballots_counted_total",
			Help: "Total number of ballots counted",
		}),
		BallotsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ballotbox_ballots_rejected_total",
			Help: "Total number of count attempts rejected, by outcome",
		}, []string{"status"}),
		BallotsInvalidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_ballots_invalidated_total",
			Help: "Total number of ballots administratively invalidated",
		}),
		FraudDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_fraud_detected_total",
			Help: "Total number of double-vote attempts marked as fraud",
		}),
		CountDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballotbox_count_ballot_duration_seconds",
			Help:    "Duration of CountBallot operations (election critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		IssueDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballotbox_issue_ballot_duration_seconds",
			Help:    "Duration of IssueBallot operations (bcrypt-dominated)",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementIssued records a successful ballot issuance.
func (m *Metrics) IncrementIssued() {
	m.BallotsIssued.Inc()
}

// IncrementCounted records a successfully counted ballot.
func (m *Metrics) IncrementCounted() {
	m.BallotsCounted.Inc()
}

// IncrementRejected records a count attempt that ended in the given outcome.
func (m *Metrics) IncrementRejected(status string) {
	m.BallotsRejected.WithLabelValues(status).Inc()
}

// IncrementInvalidated records an administrative invalidation.
func (m *Metrics) IncrementInvalidated() {
	m.BallotsInvalidated.Inc()
}

// IncrementFraud records a detected double-vote attempt.
func (m *Metrics) IncrementFraud() {
	m.FraudDetected.Inc()
}

// ObserveCount records the duration of a CountBallot operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCount(start time.Time) {
	m.CountDuration.Observe(time.Since(start).Seconds())
}

// ObserveIssue records the duration of an IssueBallot operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveIssue(start time.Time) {
	m.IssueDuration.Observe(time.Since(start).Seconds())
}
