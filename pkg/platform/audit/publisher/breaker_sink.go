package publisher

import (
	"context"
	"log/slog"

	audit "ballotbox/pkg/platform/audit"
	"ballotbox/pkg/platform/circuit"
)

// BreakerSink wraps a Sink with a circuit breaker. Every event is still
// attempted so the breaker can observe recovery, but while the breaker is
// open delivery failures are swallowed and the event is kept only in the
// store. Audit recording must not fail ballot operations over a sick broker.
type BreakerSink struct {
	sink    Sink
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewBreakerSink wraps sink with breaker.
func NewBreakerSink(sink Sink, breaker *circuit.Breaker, logger *slog.Logger) *BreakerSink {
	return &BreakerSink{sink: sink, breaker: breaker, logger: logger}
}

func (b *BreakerSink) Publish(ctx context.Context, event audit.Event) error {
	err := b.sink.Publish(ctx, event)
	if err == nil {
		if _, change := b.breaker.RecordSuccess(); change.Closed {
			b.logger.Info("audit sink recovered", "breaker", b.breaker.Name())
		}
		return nil
	}

	degraded, change := b.breaker.RecordFailure()
	if change.Opened {
		b.logger.Warn("audit sink circuit opened, delivery is best effort",
			"breaker", b.breaker.Name(), "error", err)
	}
	if degraded {
		b.logger.Warn("audit event not delivered to sink",
			"action", event.Action, "subject", event.Subject, "error", err)
		return nil
	}
	return err
}
