package event

import (
	"context"
	"sync"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OutboxProcessorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		MaxRetries:       shared.DefaultMaxRetries,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// ProcessorConfigFrom overlays the [event] config section on the defaults.
// Zero values keep the default, except CleanupEnabled which is taken as is.
func ProcessorConfigFrom(cfg config.EventConfig) OutboxProcessorConfig {
	out := DefaultOutboxProcessorConfig()
	positive(&out.BatchSize, cfg.BatchSize)
	positive(&out.MaxRetries, cfg.MaxRetries)
	positive(&out.PollInterval, cfg.PollInterval)
	positive(&out.CleanupRetention, cfg.CleanupRetention)
	out.CleanupEnabled = cfg.CleanupEnabled
	return out
}

func positive[T int | time.Duration](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}

// DeliveryObserver hears about every delivery attempt.
type DeliveryObserver interface {
	ObserveDelivery(ctx context.Context, eventType string, ok bool, dead bool)
}

// OutboxProcessor moves committed outbox entries onto the event bus. A
// failing entry is retried with growing delays until it runs out of attempts
// and is parked as dead.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	bus        shared.EventPublisher
	serializer *EventSerializer
	config     OutboxProcessorConfig
	log        *zap.Logger
	observer   DeliveryObserver

	wake   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxProcessor(
	repo shared.OutboxRepository,
	bus shared.EventPublisher,
	serializer *EventSerializer,
	cfg OutboxProcessorConfig,
	log *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:       repo,
		bus:        bus,
		serializer: serializer,
		config:     cfg,
		log:        log.Named("outbox"),
		wake:       make(chan struct{}, 1),
	}
}

func (p *OutboxProcessor) SetObserver(o DeliveryObserver) { p.observer = o }

// Start launches the delivery loop, and the cleanup loop when enabled. Both
// run until Stop or until ctx is cancelled.
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.every(ctx, p.config.PollInterval, p.wake, func(ctx context.Context) { p.ProcessOnce(ctx) })
	if p.config.CleanupEnabled {
		p.every(ctx, p.config.CleanupInterval, nil, p.Cleanup)
	}

	p.log.Info("Outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Bool("cleanup", p.config.CleanupEnabled))
	return nil
}

// every runs fn on each tick of interval and on each signal on wake.
func (p *OutboxProcessor) every(ctx context.Context, interval time.Duration, wake <-chan struct{}, fn func(context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			case <-wake:
			}
			fn(ctx)
		}
	}()
}

// Stop cancels the loops and waits for them, at most until ctx expires.
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info("Outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger requests an immediate poll. Never blocks; signals coalesce.
func (p *OutboxProcessor) Trigger() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// ProcessOnce delivers one batch of new entries and one batch of entries whose
// retry is due, returning the number delivered.
func (p *OutboxProcessor) ProcessOnce(ctx context.Context) int {
	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.log.Error("Outbox poll failed", zap.String("queue", "pending"), zap.Error(err))
		return 0
	}
	delivered := p.deliverBatch(ctx, pending)

	due, err := p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.log.Error("Outbox poll failed", zap.String("queue", "retry"), zap.Error(err))
		return delivered
	}
	return delivered + p.deliverBatch(ctx, due)
}

func (p *OutboxProcessor) deliverBatch(ctx context.Context, entries []*shared.OutboxEntry) int {
	if len(entries) == 0 {
		return 0
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	// another instance may have claimed some of them in the meantime
	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.log.Error("Outbox claim failed", zap.Int("entries", len(ids)), zap.Error(err))
		return 0
	}

	n := 0
	for _, entry := range claimed {
		if p.deliver(ctx, entry) {
			n++
		}
	}
	return n
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) bool {
	if p.config.MaxRetries > 0 {
		entry.MaxRetries = p.config.MaxRetries
	}
	log := p.log.With(
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType))

	evt, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err == nil {
		err = p.bus.Publish(ctx, evt)
	}

	ok := err == nil
	if ok {
		entry.MarkSent()
		log.Debug("Event delivered")
	} else {
		entry.MarkFailed(err.Error())
		log = log.With(
			zap.String("aggregate", entry.AggregateType+"/"+entry.AggregateID.String()),
			zap.Int("retry_count", entry.RetryCount),
			zap.Error(err))
		if entry.IsDead() {
			log.Warn("Event is dead, giving up")
		} else {
			log.Error("Event delivery failed", zap.Timep("next_retry_at", entry.NextRetryAt))
		}
	}

	if uerr := p.repo.Update(ctx, entry); uerr != nil {
		log.Error("Outbox entry update failed", zap.NamedError("update_error", uerr))
	}
	if p.observer != nil {
		p.observer.ObserveDelivery(ctx, entry.EventType, ok, entry.IsDead())
	}
	return ok
}

// Cleanup deletes sent entries older than the retention period.
func (p *OutboxProcessor) Cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	switch {
	case err != nil:
		p.log.Error("Outbox cleanup failed", zap.Error(err))
	case deleted > 0:
		p.log.Info("Outbox cleaned", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}

// RetryDead requeues a dead entry and wakes the delivery loop.
func (p *OutboxProcessor) RetryDead(ctx context.Context, id uuid.UUID) error {
	entry, err := p.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := entry.ResetForRetry(); err != nil {
		return err
	}
	if err := p.repo.Update(ctx, entry); err != nil {
		return err
	}
	p.Trigger()
	return nil
}
