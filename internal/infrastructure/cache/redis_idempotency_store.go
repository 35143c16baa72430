package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const DefaultIdempotencyKeyPrefix = "bakery:event:idempotency:"

// RedisIdempotencyStore lets every server instance see which notifications and
// stock alerts were already handled. Each key holds the unix time it was
// first handled and expires after the configured TTL.
type RedisIdempotencyStore struct {
	rdb    redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisIdempotencyStore wraps a client owned by the caller. An empty
// prefix means DefaultIdempotencyKeyPrefix.
func NewRedisIdempotencyStore(rdb redis.Cmdable, prefix string) *RedisIdempotencyStore {
	if prefix == "" {
		prefix = DefaultIdempotencyKeyPrefix
	}
	return &RedisIdempotencyStore{rdb: rdb, prefix: prefix, now: time.Now}
}

// MarkProcessed wins only for the first caller, through SET NX
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	stamp := strconv.FormatInt(s.now().Unix(), 10)
	won, err := s.rdb.SetNX(ctx, s.prefix+key, stamp, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency: mark %s: %w", key, err)
	}
	return won, nil
}

func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency: check %s: %w", key, err)
	}
	return n == 1, nil
}

// Close leaves the shared client open
func (s *RedisIdempotencyStore) Close() error { return nil }

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
