package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyStats counts what idempotent handlers did
type IdempotencyStats struct {
	Processed int64 `json:"processed"`
	Duplicate int64 `json:"duplicate"`
	Failed    int64 `json:"failed"`
}

// IdempotencyMetrics is shared by handlers that should report together
type IdempotencyMetrics struct {
	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// Stats returns a snapshot
func (m *IdempotencyMetrics) Stats() IdempotencyStats {
	return IdempotencyStats{
		Processed: m.processed.Load(),
		Duplicate: m.duplicate.Load(),
		Failed:    m.failed.Load(),
	}
}

// IdempotentHandler makes a handler safe for at-least-once delivery: an event
// ID is recorded per handler and repeats are acknowledged without running it.
type IdempotentHandler struct {
	handler shared.EventHandler
	name    string
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
	metrics *IdempotencyMetrics
}

// IdempotentHandlerOption is a functional option for IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig sets the idempotency configuration
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// WithIdempotencyMetrics sets the metrics collector
func WithIdempotencyMetrics(metrics *IdempotencyMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.metrics = metrics
	}
}

// WithHandlerName overrides the key prefix; it defaults to the handler's Go type
func WithHandlerName(name string) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.name = name
	}
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		handler: handler,
		name:    fmt.Sprintf("%T", handler),
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
		metrics: &IdempotencyMetrics{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle runs the wrapped handler unless this event ID was already handled.
// A failed attempt releases nothing: the key is only written after success, so
// the outbox retry runs the handler again.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	key := shared.IdempotencyKey(h.name, event.EventID())
	seen, err := h.store.IsProcessed(ctx, key)
	if err != nil {
		h.logger.Warn("idempotency check failed, processing anyway",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	} else if seen {
		h.metrics.duplicate.Add(1)
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("handler", h.name),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.metrics.failed.Add(1)
		return err
	}

	if _, err := h.store.MarkProcessed(ctx, key, h.config.EffectiveTTL()); err != nil {
		h.logger.Warn("failed to record processed event",
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
	h.metrics.processed.Add(1)
	return nil
}

// GetMetrics returns the metrics for this handler
func (h *IdempotentHandler) GetMetrics() *IdempotencyMetrics {
	return h.metrics
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
