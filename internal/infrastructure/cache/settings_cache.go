package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SettingsCacheConfig configures the tiered settings cache
type SettingsCacheConfig struct {
	L1TTL         time.Duration
	L2TTL         time.Duration
	KeyPrefix     string
	PubSubChannel string
}

// DefaultSettingsCacheConfig returns the default configuration
func DefaultSettingsCacheConfig() SettingsCacheConfig {
	return SettingsCacheConfig{
		L1TTL:         30 * time.Second,
		L2TTL:         10 * time.Minute,
		KeyPrefix:     "bakery:setting:",
		PubSubChannel: "bakery:settings:invalidate",
	}
}

// invalidation is the pub/sub payload; All flushes every local entry
type invalidation struct {
	Keys      []string `json:"keys,omitempty"`
	All       bool     `json:"all,omitempty"`
	Timestamp int64    `json:"ts"`
}

// CacheStats reports hit counters
type CacheStats struct {
	L1Hits   int64   `json:"l1_hits"`
	L2Hits   int64   `json:"l2_hits"`
	Misses   int64   `json:"misses"`
	Entries  int     `json:"entries"`
	HitRatio float64 `json:"hit_ratio"`
}

// TieredSettingsCache reads settings through a local go-cache (L1) and redis
// (L2). Writes go to the database first; the caller then invalidates, which
// clears both tiers here and L1 on every other instance through pub/sub.
// Without a redis client it degrades to L1 only.
type TieredSettingsCache struct {
	l1     *gocache.Cache
	l2     *redis.Client
	config SettingsCacheConfig
	logger *zap.Logger

	l1Hits atomic.Int64
	l2Hits atomic.Int64
	misses atomic.Int64

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

// SettingsCacheOption is a functional option for the settings cache
type SettingsCacheOption func(*TieredSettingsCache)

// WithSettingsCacheConfig sets the cache configuration
func WithSettingsCacheConfig(cfg SettingsCacheConfig) SettingsCacheOption {
	return func(c *TieredSettingsCache) {
		c.config = cfg
	}
}

// WithSettingsCacheLogger sets the logger
func WithSettingsCacheLogger(logger *zap.Logger) SettingsCacheOption {
	return func(c *TieredSettingsCache) {
		c.logger = logger
	}
}

// NewTieredSettingsCache creates the cache; client may be nil
func NewTieredSettingsCache(client *redis.Client, opts ...SettingsCacheOption) *TieredSettingsCache {
	c := &TieredSettingsCache{
		l2:     client,
		config: DefaultSettingsCacheConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.l1 = gocache.New(c.config.L1TTL, 2*c.config.L1TTL)
	return c
}

// Get returns the cached setting, trying L1 then L2
func (c *TieredSettingsCache) Get(ctx context.Context, key string) (*settings.Setting, bool) {
	if v, ok := c.l1.Get(key); ok {
		c.l1Hits.Add(1)
		s := v.(settings.Setting)
		return &s, true
	}

	if c.l2 != nil {
		data, err := c.l2.Get(ctx, c.config.KeyPrefix+key).Bytes()
		switch {
		case err == nil:
			var s settings.Setting
			if err := json.Unmarshal(data, &s); err == nil {
				c.l2Hits.Add(1)
				c.l1.SetDefault(key, s)
				return &s, true
			}
			c.logger.Warn("discarding unreadable cached setting", zap.String("key", key))
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("settings L2 read failed", zap.String("key", key), zap.Error(err))
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Set stores a setting loaded from the database in both tiers
func (c *TieredSettingsCache) Set(ctx context.Context, s *settings.Setting) {
	c.l1.SetDefault(s.Key, *s)
	if c.l2 == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.l2.Set(ctx, c.config.KeyPrefix+s.Key, data, c.config.L2TTL).Err(); err != nil {
		c.logger.Warn("settings L2 write failed", zap.String("key", s.Key), zap.Error(err))
	}
}

// Invalidate removes keys from both tiers and tells other instances to drop
// them from L1. With no keys everything is invalidated.
func (c *TieredSettingsCache) Invalidate(ctx context.Context, keys ...string) error {
	msg := invalidation{Keys: keys, All: len(keys) == 0, Timestamp: time.Now().UnixNano()}
	c.apply(msg)

	if c.l2 == nil {
		return nil
	}
	if !msg.All {
		redisKeys := make([]string, len(keys))
		for i, k := range keys {
			redisKeys[i] = c.config.KeyPrefix + k
		}
		if err := c.l2.Del(ctx, redisKeys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cached settings: %w", err)
		}
	} else if err := c.deleteAllL2(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := c.l2.Publish(ctx, c.config.PubSubChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish settings invalidation: %w", err)
	}
	return nil
}

func (c *TieredSettingsCache) deleteAllL2(ctx context.Context) error {
	iter := c.l2.Scan(ctx, 0, c.config.KeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached settings: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.l2.Del(ctx, keys...).Err()
}

func (c *TieredSettingsCache) apply(msg invalidation) {
	if msg.All {
		c.l1.Flush()
		return
	}
	for _, k := range msg.Keys {
		c.l1.Delete(k)
	}
}

// StartInvalidationSubscription listens for invalidations published by other
// instances until ctx is cancelled or Close is called
func (c *TieredSettingsCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pubsub != nil {
		return nil
	}

	pubsub := c.l2.Subscribe(ctx, c.config.PubSubChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", c.config.PubSubChannel, err)
	}
	c.pubsub = pubsub
	c.done = make(chan struct{})

	go func(ch <-chan *redis.Message, done chan struct{}) {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg invalidation
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					c.logger.Warn("ignoring malformed settings invalidation", zap.Error(err))
					continue
				}
				c.apply(msg)
				c.logger.Debug("settings cache invalidated",
					zap.Strings("keys", msg.Keys),
					zap.Bool("all", msg.All),
				)
			}
		}
	}(pubsub.Channel(), c.done)

	c.logger.Info("settings cache subscribed", zap.String("channel", c.config.PubSubChannel))
	return nil
}

// Stats returns the hit counters
func (c *TieredSettingsCache) Stats() CacheStats {
	stats := CacheStats{
		L1Hits:  c.l1Hits.Load(),
		L2Hits:  c.l2Hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.l1.ItemCount(),
	}
	if total := stats.L1Hits + stats.L2Hits + stats.Misses; total > 0 {
		stats.HitRatio = float64(stats.L1Hits+stats.L2Hits) / float64(total)
	}
	return stats
}

// Close stops the subscription. The redis client belongs to the caller.
func (c *TieredSettingsCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pubsub == nil {
		return nil
	}
	err := c.pubsub.Close()
	<-c.done
	c.pubsub = nil
	return err
}
