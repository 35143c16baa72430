package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LowStockCounter counts products under their minimum
type LowStockCounter interface {
	CountBelowMinimum(ctx context.Context) (int64, error)
}

// BakeryMetrics records inventory, order and outbox delivery metrics
type BakeryMetrics struct {
	logger *zap.Logger
	meter  metric.Meter

	deductions        *Counter
	deductedLines     *Counter
	restores          *Counter
	restoredLines     *Counter
	insufficientStock *Counter

	ordersPlaced  *Counter
	statusChanges *Counter
	conflicts     *Counter

	outboxDeliveries *Counter
}

// NewBakeryMetrics creates the instruments on meter
func NewBakeryMetrics(meter metric.Meter, logger *zap.Logger) (*BakeryMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &BakeryMetrics{logger: logger, meter: meter}

	counters := []struct {
		dst        **Counter
		name, desc string
		unit       string
	}{
		{&m.deductions, "bakery_inventory_deductions_total", "Order stock deductions by outcome", "{deduction}"},
		{&m.deductedLines, "bakery_inventory_deducted_lines_total", "Order lines deducted from stock", "{line}"},
		{&m.restores, "bakery_inventory_restores_total", "Order stock restorations by outcome", "{restore}"},
		{&m.restoredLines, "bakery_inventory_restored_lines_total", "Order lines returned to stock", "{line}"},
		{&m.insufficientStock, "bakery_inventory_insufficient_stock_total", "Deductions rejected for lack of stock", "{rejection}"},
		{&m.ordersPlaced, "bakery_orders_placed_total", "Orders placed by channel", "{order}"},
		{&m.statusChanges, "bakery_order_status_changes_total", "Order status transitions", "{transition}"},
		{&m.conflicts, "bakery_order_conflicts_total", "Optimistic lock conflicts on orders", "{conflict}"},
		{&m.outboxDeliveries, "bakery_outbox_deliveries_total", "Outbox delivery attempts by result", "{attempt}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}
	return m, nil
}

// RecordDeduction records one deduction attempt for an order
func (m *BakeryMetrics) RecordDeduction(ctx context.Context, outcome, reason string, lines int) {
	m.deductions.Inc(ctx, AttrOutcome.String(outcome), AttrReason.String(reason))
	if lines > 0 {
		m.deductedLines.Add(ctx, int64(lines), AttrReason.String(reason))
	}
}

// RecordRestore records one restoration attempt for an order
func (m *BakeryMetrics) RecordRestore(ctx context.Context, outcome, reason string, lines int) {
	m.restores.Inc(ctx, AttrOutcome.String(outcome), AttrReason.String(reason))
	if lines > 0 {
		m.restoredLines.Add(ctx, int64(lines), AttrReason.String(reason))
	}
}

// RecordInsufficientStock counts a rejected deduction
func (m *BakeryMetrics) RecordInsufficientStock(ctx context.Context) {
	m.insufficientStock.Inc(ctx)
}

// RecordOrderPlaced counts a new order
func (m *BakeryMetrics) RecordOrderPlaced(ctx context.Context, channel string) {
	m.ordersPlaced.Inc(ctx, AttrChannel.String(channel))
}

// RecordStatusChange counts a status transition
func (m *BakeryMetrics) RecordStatusChange(ctx context.Context, from, to string) {
	m.statusChanges.Inc(ctx, AttrFromStatus.String(from), AttrToStatus.String(to))
}

// RecordConflict counts a version conflict
func (m *BakeryMetrics) RecordConflict(ctx context.Context, operation string) {
	m.conflicts.Inc(ctx, AttrOperation.String(operation))
}

// ObserveDelivery counts one outbox delivery attempt
func (m *BakeryMetrics) ObserveDelivery(ctx context.Context, eventType string, ok, dead bool) {
	result := "retry"
	switch {
	case ok:
		result = "sent"
	case dead:
		result = "dead"
	}
	m.outboxDeliveries.Inc(ctx, AttrEventType.String(eventType), AttrResult.String(result))
}

// RegisterLowStockGauge reports the number of products under their minimum
// on every collection
func (m *BakeryMetrics) RegisterLowStockGauge(counter LowStockCounter) error {
	gauge, err := m.meter.Int64ObservableGauge("bakery_inventory_low_stock_products",
		metric.WithDescription("Products whose stock is below their minimum"),
		metric.WithUnit("{product}"),
	)
	if err != nil {
		return err
	}
	_, err = m.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		n, err := counter.CountBelowMinimum(ctx)
		if err != nil {
			m.logger.Warn("Low stock gauge failed", zap.Error(err))
			return nil
		}
		o.ObserveInt64(gauge, n)
		return nil
	}, gauge)
	return err
}
