// Package service holds the ballot lifecycle engine and the registrar.
// Both are stateless orchestrators over the persistence collaborator;
// identity minimization happens at this layer so raw national IDs and
// plaintext names never cross into stores, logs or the audit stream.
package service

import (
	"context"
	"log/slog"

	electionmetrics "ballotbox/internal/election/metrics"
	audit "ballotbox/pkg/platform/audit"
	"ballotbox/pkg/requestcontext"
)

// AuditPublisher is the slice of the audit publisher the services need.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Option configures an Engine or Registrar.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *electionmetrics.Metrics
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(o *options) {
		o.auditPublisher = publisher
	}
}

func WithMetrics(m *electionmetrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func applyOptions(opts []Option) *options {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// emitAudit publishes an event and logs it. Subjects must already be
// minimized; callers pass obfuscated IDs, never raw identity material.
func (o *options) emitAudit(ctx context.Context, action audit.AuditEvent, subject, reason, actorID string) {
	requestID := requestcontext.RequestID(ctx)
	o.logger.InfoContext(ctx, string(action),
		"subject", subject, "reason", reason, "request_id", requestID, "log_type", "audit")
	if o.auditPublisher == nil {
		return
	}
	_ = o.auditPublisher.Emit(ctx, audit.Event{
		Subject:   subject,
		Action:    string(action),
		Reason:    reason,
		RequestID: requestID,
		ActorID:   actorID,
	})
}
