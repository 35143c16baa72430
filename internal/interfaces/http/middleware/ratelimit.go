package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter counts requests per key in fixed windows
type Limiter interface {
	// Allow consumes one request for key and returns how many remain
	Allow(ctx context.Context, key string) (remaining int, ok bool, err error)
	Limit() int
}

// MemoryLimiter is a per-process fixed window limiter
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	count   int
	started time.Time
}

// NewMemoryLimiter creates a limiter and starts its cleanup loop; call Close to stop it
func NewMemoryLimiter(limit int, every time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  every,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(l.window * 2)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.clients {
				if now.Sub(w.started) > l.window*2 {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Close stops the cleanup loop
func (l *MemoryLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

// Limit returns the per-window allowance
func (l *MemoryLimiter) Limit() int { return l.limit }

// Allow implements Limiter
func (l *MemoryLimiter) Allow(_ context.Context, key string) (int, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || now.Sub(w.started) >= l.window {
		w = &window{started: now}
		l.clients[key] = w
	}
	if w.count >= l.limit {
		return 0, false, nil
	}
	w.count++
	return l.limit - w.count, true, nil
}

// RedisLimiter shares the window across server instances
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter storing counters under prefix
func NewRedisLimiter(client *redis.Client, prefix string, limit int, every time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: every}
}

// Limit returns the per-window allowance
func (l *RedisLimiter) Limit() int { return l.limit }

// Allow implements Limiter
func (l *RedisLimiter) Allow(ctx context.Context, key string) (int, bool, error) {
	k := l.prefix + key
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return 0, false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if n > int64(l.limit) {
		return 0, false, nil
	}
	return l.limit - int(n), true, nil
}

// RateLimit limits requests per client IP. Limiter errors let the request through.
func RateLimit(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return RateLimitByKey(limiter, logger, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per keyFunc(c)
func RateLimitByKey(limiter Limiter, logger *zap.Logger, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		remaining, ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			if logger != nil {
				logger.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			}
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited, "Too many requests. Please try again later.", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
