// Package report builds the dashboard figures shown to the bakery's staff.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRangeDays = 7
	maxRangeDays     = 366
	defaultTopLimit  = 5
)

// StockCounter counts products under their minimum stock
type StockCounter interface {
	CountBelowMinimum(ctx context.Context) (int64, error)
}

// DashboardFilter selects the reporting period. From and To are calendar
// days, both inclusive.
type DashboardFilter struct {
	From     *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To       *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	TopLimit int        `form:"top" binding:"omitempty,min=1,max=50"`
}

// DashboardResponse is the dashboard summary of a period
type DashboardResponse struct {
	From          string                  `json:"from"`
	To            string                  `json:"to"`
	Orders        int64                   `json:"orders"`
	Delivered     int64                   `json:"delivered"`
	Cancelled     int64                   `json:"cancelled"`
	Revenue       decimal.Decimal         `json:"revenue"`
	AvgTicket     decimal.Decimal         `json:"avg_ticket"`
	ByStatus      map[order.Status]int64  `json:"by_status"`
	ByChannel     map[order.Channel]int64 `json:"by_channel"`
	TopProducts   []order.ProductSales    `json:"top_products"`
	RevenueByDay  []order.DailyRevenue    `json:"revenue_by_day"`
	LowStockItems int64                   `json:"low_stock_items"`
}

// DashboardService aggregates orders and stock for the dashboard
type DashboardService struct {
	query order.QueryRepository
	stock StockCounter
	loc   *time.Location
	now   func() time.Time
}

// NewDashboardService creates a DashboardService. Days are calendar days in loc.
func NewDashboardService(query order.QueryRepository, stock StockCounter, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{query: query, stock: stock, loc: loc, now: time.Now}
}

// Summary returns the figures of the period. The period defaults to the last
// seven days including today.
func (s *DashboardService) Summary(ctx context.Context, filter DashboardFilter) (*DashboardResponse, error) {
	from, to, err := s.period(filter)
	if err != nil {
		return nil, err
	}
	limit := filter.TopLimit
	if limit <= 0 {
		limit = defaultTopLimit
	}

	resp := &DashboardResponse{
		From: from.Format("2006-01-02"),
		To:   to.AddDate(0, 0, -1).Format("2006-01-02"),
	}

	g, gctx := errgroup.WithContext(ctx)
	var totals *order.SalesTotals
	g.Go(func() error {
		var err error
		totals, err = s.query.SalesTotals(gctx, from, to)
		if err != nil {
			return fmt.Errorf("sales totals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		resp.TopProducts, err = s.query.TopProducts(gctx, from, to, limit)
		if err != nil {
			return fmt.Errorf("top products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		resp.RevenueByDay, err = s.query.RevenueByDay(gctx, from, to)
		if err != nil {
			return fmt.Errorf("revenue by day: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		resp.LowStockItems, err = s.stock.CountBelowMinimum(gctx)
		if err != nil {
			return fmt.Errorf("low stock count: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.Orders = totals.Orders
	resp.Delivered = totals.Delivered
	resp.Cancelled = totals.Cancelled
	resp.Revenue = totals.Revenue
	resp.AvgTicket = totals.AvgTicket
	resp.ByStatus = totals.ByStatus
	resp.ByChannel = totals.ByChannel
	return resp, nil
}

// period converts the inclusive day filter to [from, to)
func (s *DashboardService) period(filter DashboardFilter) (time.Time, time.Time, error) {
	to := s.date(s.now().In(s.loc)).AddDate(0, 0, 1)
	if filter.To != nil {
		to = s.date(*filter.To).AddDate(0, 0, 1)
	}
	from := to.AddDate(0, 0, -defaultRangeDays)
	if filter.From != nil {
		from = s.date(*filter.From)
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_RANGE", "'from' must not be after 'to'")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_RANGE", "The period cannot exceed one year")
	}
	return from, to, nil
}

// date anchors the calendar date of t at midnight in loc
func (s *DashboardService) date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}
