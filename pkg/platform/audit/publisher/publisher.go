// Package publisher emits audit events to a store and an optional external
// sink, synchronously by default or through a buffered worker.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "ballotbox/pkg/platform/audit"
)

// ErrBufferFull is returned when the async buffer cannot accept more events.
var ErrBufferFull = errors.New("audit buffer full")

// Sink receives every event in addition to the store, e.g. a Kafka topic.
type Sink interface {
	Publish(ctx context.Context, event audit.Event) error
}

// Publisher writes audit events to a Store and fans out to an optional Sink.
// In sync mode Emit blocks until the event is persisted. With an async buffer
// Emit enqueues and a worker goroutine persists; Close drains the queue.
type Publisher struct {
	store  audit.Store
	sink   Sink
	logger *slog.Logger

	ch        chan audit.Event
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.ch = make(chan audit.Event, size)
	}
}

// WithSink attaches an external sink alongside the store.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

// WithLogger sets the logger used for delivery failures in async mode.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher constructs a Publisher. Without options it is synchronous.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.ch != nil {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Emit records an event. A zero timestamp is stamped with the current time.
// In async mode a full buffer drops the event and returns ErrBufferFull
// rather than blocking the caller.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.ch == nil {
		return p.deliver(ctx, event)
	}

	select {
	case p.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// List returns the stored events for a subject.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

// ListRecent returns the most recent stored events.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close drains the async buffer and stops the worker. Safe to call on a
// synchronous publisher and safe to call more than once.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.ch != nil {
			close(p.ch)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) worker() {
	defer p.wg.Done()
	for event := range p.ch {
		if err := p.deliver(context.Background(), event); err != nil {
			p.logger.Error("audit event delivery failed",
				"action", event.Action, "subject", event.Subject, "error", err)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.sink != nil {
		return p.sink.Publish(ctx, event)
	}
	return nil
}
