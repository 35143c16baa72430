package persistence

import (
	"context"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// productionStatuses are the orders a baker still has to produce
var productionStatuses = []order.Status{
	order.StatusConfirmed,
	order.StatusInProduction,
}

// GormOrderQueryRepository implements order.QueryRepository using GORM
type GormOrderQueryRepository struct {
	db  *gorm.DB
	loc *time.Location
}

// NewGormOrderQueryRepository creates a new GormOrderQueryRepository.
// Daily buckets are computed in loc.
func NewGormOrderQueryRepository(db *gorm.DB, loc *time.Location) *GormOrderQueryRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &GormOrderQueryRepository{db: db, loc: loc}
}

// ProductionPlan sums ordered quantities per product for orders due in [from, to).
// Orders without a schedule are due when placed.
func (r *GormOrderQueryRepository) ProductionPlan(ctx context.Context, from, to time.Time) ([]order.DailyProduct, error) {
	var rows []order.DailyProduct
	err := r.db.WithContext(ctx).Table("order_items oi").
		Select(`
			oi.product_id as product_id,
			MAX(oi.product_name) as product_name,
			COALESCE(SUM(oi.quantity), 0) as quantity,
			COUNT(DISTINCT o.id) as orders
		`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status IN ?", productionStatuses).
		Where("COALESCE(o.scheduled_for, o.created_at) >= ? AND COALESCE(o.scheduled_for, o.created_at) < ?", from, to).
		Group("oi.product_id").
		Order("product_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SalesTotals aggregates orders created in [from, to). Revenue counts delivered orders only.
func (r *GormOrderQueryRepository) SalesTotals(ctx context.Context, from, to time.Time) (*order.SalesTotals, error) {
	type groupResult struct {
		Status  order.Status
		Channel order.Channel
		Orders  int64
		Amount  decimal.Decimal
	}

	var groups []groupResult
	err := r.db.WithContext(ctx).Table("orders").
		Select("status, channel, COUNT(*) as orders, COALESCE(SUM(total), 0) as amount").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status, channel").
		Scan(&groups).Error
	if err != nil {
		return nil, err
	}

	totals := &order.SalesTotals{
		Revenue:   decimal.Zero,
		AvgTicket: decimal.Zero,
		ByStatus:  make(map[order.Status]int64),
		ByChannel: make(map[order.Channel]int64),
	}
	for _, g := range groups {
		totals.Orders += g.Orders
		totals.ByStatus[g.Status] += g.Orders
		totals.ByChannel[g.Channel] += g.Orders
		switch g.Status {
		case order.StatusDelivered:
			totals.Delivered += g.Orders
			totals.Revenue = totals.Revenue.Add(g.Amount)
		case order.StatusCancelled:
			totals.Cancelled += g.Orders
		}
	}
	totals.Revenue = totals.Revenue.Round(2)
	if totals.Delivered > 0 {
		totals.AvgTicket = totals.Revenue.Div(decimal.NewFromInt(totals.Delivered)).Round(2)
	}
	return totals, nil
}

// TopProducts ranks products by delivered revenue in [from, to)
func (r *GormOrderQueryRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]order.ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}
	type productResult struct {
		ProductID   uuid.UUID
		ProductName string
		Quantity    decimal.Decimal
		Revenue     decimal.Decimal
	}

	var results []productResult
	err := r.db.WithContext(ctx).Table("order_items oi").
		Select(`
			oi.product_id as product_id,
			MAX(oi.product_name) as product_name,
			COALESCE(SUM(oi.quantity), 0) as quantity,
			COALESCE(SUM(oi.subtotal), 0) as revenue
		`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status = ?", order.StatusDelivered).
		Where("o.delivered_at >= ? AND o.delivered_at < ?", from, to).
		Group("oi.product_id").
		Order("revenue DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	sales := make([]order.ProductSales, len(results))
	for i, res := range results {
		sales[i] = order.ProductSales{
			ProductID:   res.ProductID,
			ProductName: res.ProductName,
			Quantity:    res.Quantity,
			Revenue:     res.Revenue.Round(2),
		}
	}
	return sales, nil
}

// RevenueByDay buckets delivered revenue by local calendar day. Days without
// sales are included so charts have a continuous axis.
func (r *GormOrderQueryRepository) RevenueByDay(ctx context.Context, from, to time.Time) ([]order.DailyRevenue, error) {
	type deliveredRow struct {
		DeliveredAt time.Time
		Total       decimal.Decimal
	}

	var rows []deliveredRow
	err := r.db.WithContext(ctx).Table("orders").
		Select("delivered_at, total").
		Where("status = ?", order.StatusDelivered).
		Where("delivered_at >= ? AND delivered_at < ?", from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*order.DailyRevenue)
	for _, row := range rows {
		day := row.DeliveredAt.In(r.loc).Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &order.DailyRevenue{Day: day, Revenue: decimal.Zero}
			byDay[day] = d
		}
		d.Orders++
		d.Revenue = d.Revenue.Add(row.Total)
	}

	var out []order.DailyRevenue
	start := from.In(r.loc)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, r.loc)
	for day := start; day.Before(to); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if d, ok := byDay[key]; ok {
			d.Revenue = d.Revenue.Round(2)
			out = append(out, *d)
			continue
		}
		out = append(out, order.DailyRevenue{Day: key, Revenue: decimal.Zero})
	}
	return out, nil
}

var _ order.QueryRepository = (*GormOrderQueryRepository)(nil)
