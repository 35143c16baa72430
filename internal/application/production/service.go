// Package production serves the baker's workflow: what to bake for a day,
// which orders are waiting and recording what came out of the oven.
package production

import (
	"context"
	"fmt"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	apporder "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/production"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// queueStatuses are the orders still waiting on the bakery
var queueStatuses = []order.Status{order.StatusConfirmed, order.StatusInProduction}

// ProductReader loads a product with its recipe
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// StockProducer books produced goods into inventory
type StockProducer interface {
	AddProduction(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal, consumptions map[uuid.UUID]decimal.Decimal, userID *uuid.UUID, note string) (*inventory.StockResponse, error)
	Availability(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

// Service handles production operations
type Service struct {
	txScope  shared.TransactionScope
	orders   order.Repository
	query    order.QueryRepository
	products ProductReader
	batches  production.Repository
	stock    StockProducer
	loc      *time.Location
	logger   *zap.Logger
}

// NewService creates a production Service. Days are calendar days in loc.
func NewService(
	txScope shared.TransactionScope,
	orders order.Repository,
	query order.QueryRepository,
	products ProductReader,
	batches production.Repository,
	stock StockProducer,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		txScope:  txScope,
		orders:   orders,
		query:    query,
		products: products,
		batches:  batches,
		stock:    stock,
		loc:      loc,
		logger:   logger,
	}
}

// DayBounds returns [start, end) of the calendar day containing t
func (s *Service) DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(s.loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

// Queue lists confirmed and in-production orders due on day, oldest first
func (s *Service) Queue(ctx context.Context, day time.Time) ([]apporder.OrderResponse, error) {
	from, to := s.DayBounds(day)
	filter := order.Filter{
		Filter:   shared.Filter{OrderBy: "created_at", OrderDir: "asc"},
		Statuses: queueStatuses,
		DueFrom:  &from,
		DueTo:    &to,
	}
	orders, _, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load production queue: %w", err)
	}
	out := make([]apporder.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, apporder.ToOrderResponse(&orders[i]))
	}
	return out, nil
}

// Plan sums what the queue of day needs per product and how much of it
// current stock already covers.
func (s *Service) Plan(ctx context.Context, day time.Time) (*PlanResponse, error) {
	from, to := s.DayBounds(day)
	rows, err := s.query.ProductionPlan(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load production plan: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ProductID)
	}
	stock, err := s.stock.Availability(ctx, ids)
	if err != nil {
		return nil, err
	}

	plan := &PlanResponse{Day: from.Format("2006-01-02"), Lines: make([]PlanLine, 0, len(rows))}
	for _, r := range rows {
		inStock := stock[r.ProductID]
		toBake := r.Quantity.Sub(decimal.Max(inStock, decimal.Zero))
		if toBake.IsNegative() {
			toBake = decimal.Zero
		}
		plan.Lines = append(plan.Lines, PlanLine{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Ordered:     r.Quantity,
			Orders:      r.Orders,
			InStock:     inStock,
			ToBake:      toBake,
		})
	}
	return plan, nil
}

// RecordBatch stores a batch, adds it to the product's stock and consumes
// the recipe's ingredients, all in one transaction.
func (s *Service) RecordBatch(ctx context.Context, bakerID uuid.UUID, req RecordBatchRequest) (*BatchResponse, error) {
	var producedAt time.Time
	if req.ProducedAt != nil {
		producedAt = *req.ProducedAt
	}

	var (
		resp    BatchResponse
		product *catalog.Product
	)
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.products.FindByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		batch, err := production.NewBatch(product.ID, bakerID, req.Quantity, producedAt, req.Note)
		if err != nil {
			return err
		}

		recipe := make(map[uuid.UUID]decimal.Decimal, len(product.Recipe))
		for _, l := range product.Recipe {
			recipe[l.IngredientID] = l.QuantityPerUnit
		}
		consumptions := make(map[uuid.UUID]decimal.Decimal, len(recipe))
		for _, c := range batch.Consumptions(recipe) {
			consumptions[c.IngredientID] = c.Quantity
		}

		if err := s.batches.Create(ctx, batch); err != nil {
			return err
		}
		stock, err := s.stock.AddProduction(ctx, product.ID, batch.Quantity, consumptions, &bakerID, productionNote(batch))
		if err != nil {
			return err
		}

		resp = toBatchResponse(batch)
		resp.ProductName = product.Name
		resp.StockAfter = &stock.Quantity
		resp.IngredientsUsed = len(consumptions)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Production batch recorded",
		zap.String("batch_id", resp.ID.String()),
		zap.String("product", product.Name),
		zap.String("quantity", resp.Quantity.String()),
		zap.String("baker_id", bakerID.String()))
	return &resp, nil
}

// ListBatches lists batches produced on day, newest first
func (s *Service) ListBatches(ctx context.Context, day time.Time) ([]BatchResponse, error) {
	from, to := s.DayBounds(day)
	batches, err := s.batches.FindBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		out = append(out, toBatchResponse(&batches[i]))
	}
	return out, nil
}

func productionNote(b *production.Batch) string {
	if b.Note != "" {
		return "batch " + b.ID.String() + ": " + b.Note
	}
	return "batch " + b.ID.String()
}
