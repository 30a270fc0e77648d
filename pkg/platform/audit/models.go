package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategorySecurity covers events relevant to election integrity
	// monitoring and forensics. These feed into SIEM systems and alerting.
	// Examples: fraud detection, rejected count attempts, invalidations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled or aggregated with shorter retention.
	// Examples: registrations, issuance, successful counts.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Subject is always minimized identity material (an obfuscated national ID
// or a ballot-number digest). Raw national IDs, ballot numbers and plaintext
// names must never enter the audit stream.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Subject   string
	Action    string
	// Reason carries the rejection or detection detail, e.g. a BallotStatus.
	Reason string
	// RequestID is the correlation ID from HTTP request context.
	RequestID string
	// ActorID tracks who performed the action when different from the
	// subject, e.g. the admin invalidating a ballot.
	ActorID string
}

type AuditEvent string

const (
	// Registry events
	EventVoterRegistered     AuditEvent = "voter_registered"
	EventVoterDeregistered   AuditEvent = "voter_deregistered"
	EventCandidateRegistered AuditEvent = "candidate_registered"

	// Ballot lifecycle events
	EventBallotIssued      AuditEvent = "ballot_issued"
	EventBallotCounted     AuditEvent = "ballot_counted"
	EventBallotRejected    AuditEvent = "ballot_rejected"
	EventBallotInvalidated AuditEvent = "ballot_invalidated"

	// Integrity events
	EventFraudDetected AuditEvent = "fraud_detected"
)

// eventCategories maps each audit event to its category.
// Security: integrity monitoring, SIEM integration, alerting.
// Operations: routine activity, can be sampled.
var eventCategories = map[AuditEvent]EventCategory{
	EventBallotRejected:    CategorySecurity,
	EventBallotInvalidated: CategorySecurity,
	EventFraudDetected:     CategorySecurity,

	EventVoterRegistered:     CategoryOperations,
	EventVoterDeregistered:   CategoryOperations,
	EventCandidateRegistered: CategoryOperations,
	EventBallotIssued:        CategoryOperations,
	EventBallotCounted:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

//go:generate mockgen -source=models.go -destination=mocks/mocks.go -package=mocks Store

// Store persists audit events for querying.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
