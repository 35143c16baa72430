package router

import (
	"context"
	"database/sql"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultReadyTimeout bounds each readiness check
	DefaultReadyTimeout = 2 * time.Second
	maxGoroutines       = 10000
)

// NewHealth builds the liveness and readiness probes.
// rdb may be nil when redis is disabled.
func NewHealth(db *sql.DB, rdb redis.UniversalClient, timeout time.Duration) healthcheck.Handler {
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(maxGoroutines))
	if db != nil {
		health.AddReadinessCheck("database", healthcheck.DatabasePingCheck(db, timeout))
	}
	if rdb != nil {
		health.AddReadinessCheck("redis", redisPingCheck(rdb, timeout))
	}
	return health
}

func redisPingCheck(rdb redis.UniversalClient, timeout time.Duration) healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return rdb.Ping(ctx).Err()
	}
}
