package event

import (
	"context"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/persistence"
)

// OutboxPublisher writes domain events to the outbox table. Called with a
// transaction-scoped context, the entries commit or roll back with the
// aggregate change that raised them.
type OutboxPublisher struct {
	serializer *EventSerializer
	repo       shared.OutboxRepository
	notify     func()
}

// OutboxPublisherOption configures an OutboxPublisher
type OutboxPublisherOption func(*OutboxPublisher)

// WithCommitNotifier sets a callback run after the saving transaction
// commits, typically OutboxProcessor.Trigger.
func WithCommitNotifier(fn func()) OutboxPublisherOption {
	return func(p *OutboxPublisher) {
		p.notify = fn
	}
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer, repo shared.OutboxRepository, opts ...OutboxPublisherOption) *OutboxPublisher {
	p := &OutboxPublisher{serializer: serializer, repo: repo}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SaveEvents serializes events into outbox entries using the transaction in ctx
func (p *OutboxPublisher) SaveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	if err := p.repo.Save(ctx, entries...); err != nil {
		return err
	}
	if p.notify != nil {
		persistence.AfterCommit(ctx, func(context.Context) { p.notify() })
	}
	return nil
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
