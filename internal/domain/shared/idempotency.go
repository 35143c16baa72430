package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which (handler, event) pairs already ran, so an
// outbox redelivery does not send the same WhatsApp message or stock alert twice.
// Keys come from IdempotencyKey.
type IdempotencyStore interface {
	// MarkProcessed records key for ttl and reports whether it was new
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}

// IdempotencyKey scopes an event ID to one handler. Two handlers receiving the
// same event keep separate records.
func IdempotencyKey(handler string, eventID uuid.UUID) string {
	return handler + ":" + eventID.String()
}

// IdempotencyConfig controls the handler wrapper. A zero TTL falls back to
// DefaultIdempotencyTTL.
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{Enabled: true, TTL: DefaultIdempotencyTTL}
}

// EffectiveTTL returns TTL, or the default when unset
func (c IdempotencyConfig) EffectiveTTL() time.Duration {
	if c.TTL <= 0 {
		return DefaultIdempotencyTTL
	}
	return c.TTL
}
