//go:build integration

package main

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startPostgres(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("panificadora_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	p, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return &config.DatabaseConfig{
		Driver:       "postgres",
		Host:         host,
		Port:         p,
		User:         "postgres",
		Password:     "postgres",
		DBName:       "panificadora_test",
		SSLMode:      "disable",
		MaxOpenConns: 32,
		MaxIdleConns: 8,
	}
}

// Postgres runs the workers truly in parallel, unlike sqlite's single writer.
func TestRaceGoroutines_Postgres(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	a, err := newStressApp(cfg, true, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	for _, mode := range []raceMode{modeStatus, modeDeduct} {
		t.Run(string(mode), func(t *testing.T) {
			fx, err := a.seed(ctx, "pg-"+string(mode), decimal.NewFromInt(100), decimal.NewFromInt(3))
			require.NoError(t, err)

			results := raceGoroutines(ctx, a.orders, a.inventory, mode, fx.OrderID, 24, "pg")

			r, err := verify(ctx, a.orderRepo, a.movementRepo, a.stockRepo, fx, results)
			require.NoError(t, err)
			assert.True(t, r.OK(), "problems: %v", r.Problems)
			assert.True(t, r.FinalStock.Equal(decimal.NewFromInt(97)))
		})
	}
}

// A second app on the same database stands in for a second process.
func TestRaceTwoApps_Postgres(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	first, err := newStressApp(cfg, true, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })
	second, err := newStressApp(cfg, false, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	fx, err := first.seed(ctx, "pg-two", decimal.NewFromInt(10), decimal.NewFromInt(10))
	require.NoError(t, err)

	done := make(chan []attemptResult, 2)
	go func() { done <- raceGoroutines(ctx, first.orders, first.inventory, modeStatus, fx.OrderID, 8, "a") }()
	go func() { done <- raceGoroutines(ctx, second.orders, second.inventory, modeStatus, fx.OrderID, 8, "b") }()
	results := append(<-done, <-done...)

	r, err := verify(ctx, first.orderRepo, first.movementRepo, first.stockRepo, fx, results)
	require.NoError(t, err)
	assert.True(t, r.OK(), "problems: %v", r.Problems)
	assert.True(t, r.FinalStock.IsZero())
}
