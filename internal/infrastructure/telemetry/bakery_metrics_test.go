package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

// sumWhere adds the int64 points whose attributes include every kv
func sumWhere(t *testing.T, data metricdata.Aggregation, kvs ...attribute.KeyValue) int64 {
	t.Helper()
	var points []metricdata.DataPoint[int64]
	switch d := data.(type) {
	case metricdata.Sum[int64]:
		points = d.DataPoints
	case metricdata.Gauge[int64]:
		points = d.DataPoints
	default:
		t.Fatalf("unexpected aggregation %T", data)
	}
	var total int64
	for _, p := range points {
		match := true
		for _, kv := range kvs {
			v, ok := p.Attributes.Value(kv.Key)
			if !ok || v != kv.Value {
				match = false
				break
			}
		}
		if match {
			total += p.Value
		}
	}
	return total
}

func TestBakeryMetrics_Records(t *testing.T) {
	ctx := context.Background()
	reader, mp := newTestMeter(t)
	m, err := NewBakeryMetrics(mp.Meter("bakery"), zaptest.NewLogger(t))
	require.NoError(t, err)

	m.RecordDeduction(ctx, "APPLIED", "", 3)
	m.RecordDeduction(ctx, "SKIPPED", "already_claimed", 0)
	m.RecordDeduction(ctx, "SKIPPED", "already_claimed", 0)
	m.RecordRestore(ctx, "APPLIED", "", 2)
	m.RecordInsufficientStock(ctx)
	m.RecordOrderPlaced(ctx, "ONLINE")
	m.RecordOrderPlaced(ctx, "POS")
	m.RecordStatusChange(ctx, "PENDING", "CONFIRMED")
	m.RecordConflict(ctx, "change_status")
	m.ObserveDelivery(ctx, "OrderPlaced", true, false)
	m.ObserveDelivery(ctx, "OrderPlaced", false, false)
	m.ObserveDelivery(ctx, "OrderPlaced", false, true)

	got := collect(t, reader)
	assert.EqualValues(t, 1, sumWhere(t, got["bakery_inventory_deductions_total"], AttrOutcome.String("APPLIED")))
	assert.EqualValues(t, 2, sumWhere(t, got["bakery_inventory_deductions_total"], AttrReason.String("already_claimed")))
	assert.EqualValues(t, 3, sumWhere(t, got["bakery_inventory_deducted_lines_total"]))
	assert.EqualValues(t, 1, sumWhere(t, got["bakery_inventory_restores_total"]))
	assert.EqualValues(t, 2, sumWhere(t, got["bakery_inventory_restored_lines_total"]))
	assert.EqualValues(t, 1, sumWhere(t, got["bakery_inventory_insufficient_stock_total"]))
	assert.EqualValues(t, 1, sumWhere(t, got["bakery_orders_placed_total"], AttrChannel.String("POS")))
	assert.EqualValues(t, 1, sumWhere(t, got["bakery_order_status_changes_total"],
		AttrFromStatus.String("PENDING"), AttrToStatus.String("CONFIRMED")))
	assert.EqualValues(t, 1, sumWhere(t, got["bakery_order_conflicts_total"]))
	for _, result := range []string{"sent", "retry", "dead"} {
		assert.EqualValues(t, 1, sumWhere(t, got["bakery_outbox_deliveries_total"], AttrResult.String(result)), result)
	}
}

type lowStockFunc func(ctx context.Context) (int64, error)

func (f lowStockFunc) CountBelowMinimum(ctx context.Context) (int64, error) { return f(ctx) }

func TestBakeryMetrics_LowStockGauge(t *testing.T) {
	reader, mp := newTestMeter(t)
	m, err := NewBakeryMetrics(mp.Meter("bakery"), nil)
	require.NoError(t, err)

	n, fail := int64(4), false
	require.NoError(t, m.RegisterLowStockGauge(lowStockFunc(func(context.Context) (int64, error) {
		if fail {
			return 0, errors.New("connection refused")
		}
		return n, nil
	})))

	got := collect(t, reader)
	assert.EqualValues(t, 4, sumWhere(t, got["bakery_inventory_low_stock_products"]))

	n = 1
	got = collect(t, reader)
	assert.EqualValues(t, 1, sumWhere(t, got["bakery_inventory_low_stock_products"]))

	fail = true
	got = collect(t, reader)
	if data, ok := got["bakery_inventory_low_stock_products"]; ok {
		assert.Zero(t, sumWhere(t, data))
	}
}
