package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig configures DB instrumentation
type DBConfig struct {
	// Trace turns on otelgorm spans
	Trace bool
	// LogFullSQL keeps bound values in span statements. Dev only.
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBInstrumentation is a gorm plugin that records query spans, durations
// and slow queries, and observes connection pool stats
type DBInstrumentation struct {
	config DBConfig
	meter  metric.Meter
	logger *zap.Logger

	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
}

type dbStartKey struct{}

// NewDBInstrumentation builds the instruments on meter. A nil meter
// disables metrics and keeps tracing and slow query logs.
func NewDBInstrumentation(cfg DBConfig, meter metric.Meter, logger *zap.Logger) (*DBInstrumentation, error) {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &DBInstrumentation{config: cfg, meter: meter, logger: logger}
	if meter == nil {
		return d, nil
	}

	var err error
	if d.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation and table", "{query}"); err != nil {
		return nil, err
	}
	if d.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if d.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Queries slower than the slow query threshold", "{query}"); err != nil {
		return nil, err
	}
	return d, nil
}

// Name implements gorm.Plugin
func (d *DBInstrumentation) Name() string { return "bakery:db_instrumentation" }

// Initialize implements gorm.Plugin
func (d *DBInstrumentation) Initialize(db *gorm.DB) error {
	if d.config.Trace {
		opts := []otelgorm.Option{otelgorm.WithDBName(d.config.DBSystem)}
		if !d.config.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	cb := db.Callback()
	hooks := []struct {
		name   string
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", "INSERT", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", "SELECT", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", "UPDATE", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", "DELETE", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", "", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", "", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, h := range hooks {
		if err := h.before("bakery_db:before_"+h.name, markStart); err != nil {
			return err
		}
		op := h.op
		if err := h.after("bakery_db:after_"+h.name, func(tx *gorm.DB) { d.observe(tx, op) }); err != nil {
			return err
		}
	}

	if d.meter != nil {
		if err := d.observePool(db); err != nil {
			return err
		}
	}

	d.logger.Info("Database instrumentation enabled",
		zap.Bool("trace", d.config.Trace),
		zap.Bool("metrics", d.meter != nil),
		zap.Duration("slow_query_threshold", d.config.SlowQueryThresh),
	)
	return nil
}

func markStart(tx *gorm.DB) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tx.Statement.Context = context.WithValue(ctx, dbStartKey{}, time.Now())
}

func (d *DBInstrumentation) observe(tx *gorm.DB, op string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(dbStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if op == "" {
		op = operationOf(tx.Statement.SQL.String())
	}
	table := tx.Statement.Table
	failed := tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound)
	slow := elapsed > d.config.SlowQueryThresh

	if d.queryTotal != nil {
		attrs := []attribute.KeyValue{AttrDBOperation.String(op), AttrDBTable.String(table)}
		d.queryTotal.Inc(ctx, append(attrs, attribute.Bool("error", failed))...)
		d.queryDuration.RecordDuration(ctx, elapsed, attrs...)
		if slow {
			d.slowQueryTotal.Inc(ctx, attrs...)
		}
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
		if failed {
			span.SetStatus(codes.Error, tx.Error.Error())
		}
		if slow {
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", d.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
	if slow {
		d.logger.Warn("Slow query",
			zap.String("operation", op),
			zap.String("table", table),
			zap.Duration("elapsed", elapsed),
			zap.String("trace_id", GetTraceID(ctx)),
		)
	}
}

func (d *DBInstrumentation) observePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	conns, err := d.meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Pooled connections by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return err
	}
	waits, err := d.meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"),
	)
	if err != nil {
		return err
	}
	_, err = d.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(conns, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(conns, int64(s.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, conns, waits)
	return err
}

func operationOf(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}
