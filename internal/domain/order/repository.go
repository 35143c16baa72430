package order

import (
	"context"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter narrows order listings
type Filter struct {
	shared.Filter
	CustomerID *uuid.UUID
	BakerID    *uuid.UUID
	Statuses   []Status
	Channel    Channel
	From       *time.Time
	To         *time.Time
	// DueFrom/DueTo bound the due time: scheduled_for, or created_at when
	// the order has no schedule.
	DueFrom *time.Time
	DueTo   *time.Time
}

// Repository persists orders. Methods resolve their connection from ctx.
type Repository interface {
	// FindByID loads the order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	FindAll(ctx context.Context, filter Filter) ([]Order, int64, error)
	// FindStale returns PENDING unpaid online orders created before cutoff
	FindStale(ctx context.Context, cutoff time.Time, limit int) ([]Order, error)
	Create(ctx context.Context, order *Order) error
	// SaveWithLock updates mutable columns if the stored version is order.Version-1.
	// It never writes the inventory bookkeeping columns.
	SaveWithLock(ctx context.Context, order *Order) error
	// NextNumber allocates the next order number for day
	NextNumber(ctx context.Context, day time.Time) (string, error)

	// ClaimInventoryDeduction flips inventory_deducted from false to true.
	// It returns false when another caller already holds the claim.
	ClaimInventoryDeduction(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// ClaimInventoryRestore flips inventory_restored from false to true for an
	// order whose stock was deducted. It returns false otherwise.
	ClaimInventoryRestore(ctx context.Context, id uuid.UUID) (bool, error)
}

// DailyProduct is the quantity of one product due on a day
type DailyProduct struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Orders      int64           `json:"orders"`
}

// SalesTotals aggregates orders over a period
type SalesTotals struct {
	Orders    int64             `json:"orders"`
	Delivered int64             `json:"delivered"`
	Cancelled int64             `json:"cancelled"`
	Revenue   decimal.Decimal   `json:"revenue"`
	AvgTicket decimal.Decimal   `json:"avg_ticket"`
	ByStatus  map[Status]int64  `json:"by_status"`
	ByChannel map[Channel]int64 `json:"by_channel"`
}

// ProductSales is a product's sold quantity and revenue over a period
type ProductSales struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DailyRevenue is delivered revenue for one calendar day
type DailyRevenue struct {
	Day     string          `json:"day"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// QueryRepository serves read-only aggregations for dashboards and production
type QueryRepository interface {
	// ProductionPlan sums quantities of active orders scheduled in [from, to)
	ProductionPlan(ctx context.Context, from, to time.Time) ([]DailyProduct, error)
	SalesTotals(ctx context.Context, from, to time.Time) (*SalesTotals, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
	RevenueByDay(ctx context.Context, from, to time.Time) ([]DailyRevenue, error)
}
