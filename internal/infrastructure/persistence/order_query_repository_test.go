package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOrderQueryRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	orders := NewGormOrderRepository(db)
	repo := NewGormOrderQueryRepository(db, time.UTC)

	bread, cake := uuid.New(), uuid.New()
	// same zone as the domain timestamps so sqlite compares like with like
	now := time.Now()
	from := now.Add(-24 * time.Hour)
	to := now.Add(24 * time.Hour)

	delivered := newPendingOrder(t, bread, cake)
	require.NoError(t, delivered.TransitionTo(order.StatusConfirmed, nil))
	require.NoError(t, delivered.TransitionTo(order.StatusReady, nil))
	require.NoError(t, delivered.TransitionTo(order.StatusDelivered, nil))
	require.NoError(t, orders.Create(ctx, delivered))

	inOven := newPendingOrder(t, bread)
	require.NoError(t, inOven.TransitionTo(order.StatusConfirmed, nil))
	require.NoError(t, orders.Create(ctx, inOven))

	cancelled := newPendingOrder(t, cake)
	require.NoError(t, cancelled.Cancel("no stock", nil))
	require.NoError(t, orders.Create(ctx, cancelled))

	t.Run("sales totals", func(t *testing.T) {
		totals, err := repo.SalesTotals(ctx, from, to)
		require.NoError(t, err)

		assert.Equal(t, int64(3), totals.Orders)
		assert.Equal(t, int64(1), totals.Delivered)
		assert.Equal(t, int64(1), totals.Cancelled)
		assert.True(t, totals.Revenue.Equal(decimal.NewFromInt(12)), totals.Revenue.String())
		assert.True(t, totals.AvgTicket.Equal(decimal.NewFromInt(12)))
		assert.Equal(t, int64(1), totals.ByStatus[order.StatusConfirmed])
		assert.Equal(t, int64(3), totals.ByChannel[order.ChannelOnline])
	})

	t.Run("production plan counts confirmed orders only", func(t *testing.T) {
		plan, err := repo.ProductionPlan(ctx, from, to)
		require.NoError(t, err)
		require.Len(t, plan, 1)
		assert.Equal(t, bread, plan[0].ProductID)
		assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(3)))
		assert.Equal(t, int64(1), plan[0].Orders)
	})

	t.Run("top products ranks delivered revenue", func(t *testing.T) {
		top, err := repo.TopProducts(ctx, from, to, 5)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.True(t, top[0].Revenue.Equal(decimal.NewFromInt(6)))
	})

	t.Run("revenue by day fills empty days", func(t *testing.T) {
		days, err := repo.RevenueByDay(ctx, now.AddDate(0, 0, -2), to)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(days), 3)

		var total decimal.Decimal
		var withOrders int
		for _, d := range days {
			total = total.Add(d.Revenue)
			if d.Orders > 0 {
				withOrders++
				assert.Equal(t, now.UTC().Format("2006-01-02"), d.Day)
			}
		}
		assert.Equal(t, 1, withOrders)
		assert.True(t, total.Equal(decimal.NewFromInt(12)))
	})
}
