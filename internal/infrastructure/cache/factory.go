package cache

import (
	"errors"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrRedisRequired = errors.New("cache: redis is required for idempotency but not configured")

const memorySweepInterval = 5 * time.Minute

// IdempotencyStoreFactory chooses between the shared redis store and the
// per-process one, depending on whether redis came up at startup.
type IdempotencyStoreFactory struct {
	client        *redis.Client
	logger        *zap.Logger
	allowInMemory bool
}

type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.logger = logger }
}

// WithInMemoryFallback decides what happens without redis: an in-memory store
// (the default) or ErrRedisRequired.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.allowInMemory = allow }
}

// NewIdempotencyStoreFactory accepts a nil client
func NewIdempotencyStoreFactory(client *redis.Client, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{client: client, logger: zap.NewNop(), allowInMemory: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	switch {
	case f.client != nil:
		f.logger.Info("Idempotency store: redis")
		return NewRedisIdempotencyStore(f.client, ""), nil
	case f.allowInMemory:
		// two instances behind a load balancer may each notify once
		f.logger.Warn("Idempotency store: in-memory, duplicates are only suppressed within this instance")
		return NewInMemoryIdempotencyStore(memorySweepInterval), nil
	default:
		return nil, ErrRedisRequired
	}
}
