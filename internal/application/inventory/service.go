package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettingsReader exposes the business settings the inventory reads
type SettingsReader interface {
	Bool(ctx context.Context, key string) bool
}

// Metrics records deduction outcomes. Implemented by telemetry.
type Metrics interface {
	RecordDeduction(ctx context.Context, outcome, reason string, lines int)
	RecordRestore(ctx context.Context, outcome, reason string, lines int)
	RecordInsufficientStock(ctx context.Context)
}

// Service handles stock of finished goods and ingredients, including the
// at-most-once deduction of stock for orders.
type Service struct {
	txScope     shared.TransactionScope
	stock       inventory.StockItemRepository
	ingredients inventory.IngredientRepository
	movements   inventory.MovementRepository
	orders      order.Repository
	settings    SettingsReader
	events      shared.OutboxEventSaver
	metrics     Metrics
	logger      *zap.Logger
}

// NewService creates a new inventory Service
func NewService(
	txScope shared.TransactionScope,
	stock inventory.StockItemRepository,
	ingredients inventory.IngredientRepository,
	movements inventory.MovementRepository,
	orders order.Repository,
	settings SettingsReader,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		txScope:     txScope,
		stock:       stock,
		ingredients: ingredients,
		movements:   movements,
		orders:      orders,
		settings:    settings,
		logger:      logger,
	}
}

// SetEventSaver sets where domain events are written
func (s *Service) SetEventSaver(events shared.OutboxEventSaver) {
	s.events = events
}

// SetMetrics sets the deduction metrics recorder
func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

func (s *Service) saveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	if s.events == nil || len(events) == 0 {
		return nil
	}
	return s.events.SaveEvents(ctx, events...)
}

// CreateStockItem opens an empty stock record for a new product. It joins
// the transaction in ctx, if any.
func (s *Service) CreateStockItem(ctx context.Context, productID uuid.UUID, minQuantity decimal.Decimal) error {
	item, err := inventory.NewStockItem(productID)
	if err != nil {
		return err
	}
	if err := item.SetMinimum(minQuantity); err != nil {
		return err
	}
	item.Version = 1
	return s.stock.Create(ctx, item)
}

// GetStock returns a product's stock
func (s *Service) GetStock(ctx context.Context, productID uuid.UUID) (*StockResponse, error) {
	item, err := s.stock.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := ToStockResponse(item)
	return &resp, nil
}

// ListStock lists stock with product names
func (s *Service) ListStock(ctx context.Context, filter StockListFilter) (shared.Paginated[inventory.StockView], error) {
	f := filter.toDomain()
	rows, total, err := s.stock.List(ctx, f)
	if err != nil {
		return shared.Paginated[inventory.StockView]{}, err
	}
	return shared.NewPaginated(rows, total, f.Page, f.PageSize), nil
}

// Availability returns current stock for the given products. Products
// without a stock record report zero.
func (s *Service) Availability(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(productIDs))
	for _, id := range productIDs {
		item, err := s.stock.FindByProductID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				out[id] = decimal.Zero
				continue
			}
			return nil, err
		}
		out[id] = item.Quantity
	}
	return out, nil
}

// AllowsNegativeStock reports whether orders may take stock below zero
func (s *Service) AllowsNegativeStock(ctx context.Context) bool {
	if s.settings == nil {
		return false
	}
	return s.settings.Bool(ctx, settingAllowNegativeStock)
}

// Restock adds finished goods bought or made outside a recorded batch
func (s *Service) Restock(ctx context.Context, req RestockRequest, userID *uuid.UUID) (*StockResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	var item *inventory.StockItem
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.stock.Increase(ctx, req.ProductID, req.Quantity)
		if err != nil {
			return err
		}
		m, err := inventory.NewMovement(inventory.ItemTypeProduct, req.ProductID, inventory.MovementIn,
			inventory.ReasonRestock, req.Quantity, item.Quantity)
		if err != nil {
			return err
		}
		return s.movements.Create(ctx, m.By(userID).WithNote(req.Note))
	})
	if err != nil {
		return nil, err
	}
	resp := ToStockResponse(item)
	return &resp, nil
}

// AddProduction increases a product's stock by a produced quantity and
// consumes ingredients. It must run inside the caller's transaction so the
// batch record and the stock change commit together.
func (s *Service) AddProduction(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal, consumptions map[uuid.UUID]decimal.Decimal, userID *uuid.UUID, note string) (*StockResponse, error) {
	var item *inventory.StockItem
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.stock.Increase(ctx, productID, quantity)
		if err != nil {
			return err
		}
		m, err := inventory.NewMovement(inventory.ItemTypeProduct, productID, inventory.MovementIn,
			inventory.ReasonProduction, quantity, item.Quantity)
		if err != nil {
			return err
		}
		moves := []*inventory.Movement{m.By(userID).WithNote(note)}

		if len(consumptions) > 0 {
			ids := make([]uuid.UUID, 0, len(consumptions))
			for id := range consumptions {
				ids = append(ids, id)
			}
			ingredients, err := s.ingredients.FindByIDs(ctx, ids)
			if err != nil {
				return err
			}
			if len(ingredients) != len(ids) {
				return shared.NewDomainError("NOT_FOUND", "Recipe references a missing ingredient")
			}
			var events []shared.DomainEvent
			for i := range ingredients {
				ing := &ingredients[i]
				used := consumptions[ing.ID]
				if !used.IsPositive() {
					continue
				}
				cm, err := ing.Consume(used)
				if err != nil {
					return err
				}
				if ing.IsNegative() {
					s.logger.Warn("Ingredient stock went negative after production",
						zap.String("ingredient", ing.Name),
						zap.String("quantity", ing.Quantity.String()))
				}
				if err := s.ingredients.SaveWithLock(ctx, ing); err != nil {
					return err
				}
				moves = append(moves, cm.By(userID))
				events = append(events, ing.GetDomainEvents()...)
				ing.ClearDomainEvents()
			}
			if err := s.saveEvents(ctx, events...); err != nil {
				return err
			}
		}
		return s.movements.Create(ctx, moves...)
	})
	if err != nil {
		return nil, err
	}
	resp := ToStockResponse(item)
	return &resp, nil
}

// Adjust sets a product's stock to a physically counted value
func (s *Service) Adjust(ctx context.Context, req AdjustRequest, userID *uuid.UUID) (*StockResponse, error) {
	return s.mutate(ctx, req.ProductID, func(item *inventory.StockItem) (*inventory.Movement, error) {
		m, err := item.AdjustTo(req.Counted)
		if err != nil {
			return nil, err
		}
		return m.By(userID).WithNote(req.Note), nil
	})
}

// RegisterWaste removes spoiled goods
func (s *Service) RegisterWaste(ctx context.Context, req WasteRequest, userID *uuid.UUID) (*StockResponse, error) {
	return s.mutate(ctx, req.ProductID, func(item *inventory.StockItem) (*inventory.Movement, error) {
		m, err := item.Remove(req.Quantity, inventory.ReasonWaste)
		if err != nil {
			return nil, err
		}
		return m.By(userID).WithNote(req.Note), nil
	})
}

// SetMinimum sets a product's low-stock threshold
func (s *Service) SetMinimum(ctx context.Context, productID uuid.UUID, req SetMinimumRequest) (*StockResponse, error) {
	var item *inventory.StockItem
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.stock.FindByProductID(ctx, productID)
		if err != nil {
			return err
		}
		if err := item.SetMinimum(req.MinQuantity); err != nil {
			return err
		}
		return s.stock.SaveWithLock(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	resp := ToStockResponse(item)
	return &resp, nil
}

// mutate loads a stock item, applies change and saves it with its version
// check, the resulting movement and any domain events in one transaction.
func (s *Service) mutate(ctx context.Context, productID uuid.UUID, change func(*inventory.StockItem) (*inventory.Movement, error)) (*StockResponse, error) {
	var item *inventory.StockItem
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.stock.FindByProductID(ctx, productID)
		if err != nil {
			return err
		}
		m, err := change(item)
		if err != nil {
			return err
		}
		if err := s.stock.SaveWithLock(ctx, item); err != nil {
			return err
		}
		if err := s.movements.Create(ctx, m); err != nil {
			return err
		}
		events := item.GetDomainEvents()
		item.ClearDomainEvents()
		return s.saveEvents(ctx, events...)
	})
	if err != nil {
		return nil, err
	}
	resp := ToStockResponse(item)
	return &resp, nil
}

// ListMovements lists the stock ledger
func (s *Service) ListMovements(ctx context.Context, filter MovementListFilter) (shared.Paginated[MovementResponse], error) {
	f := inventory.MovementFilter{
		Filter:   shared.NewFilter(filter.Page, filter.PageSize, "created_at", "desc", ""),
		ItemType: inventory.ItemType(filter.ItemType),
		ItemID:   filter.ItemID,
		OrderID:  filter.OrderID,
		Reason:   inventory.MovementReason(filter.Reason),
	}
	moves, total, err := s.movements.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	out := make([]MovementResponse, 0, len(moves))
	for i := range moves {
		out = append(out, ToMovementResponse(&moves[i]))
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// LowStock lists products and ingredients under their minimum
func (s *Service) LowStock(ctx context.Context) ([]LowStockItem, error) {
	products, _, err := s.stock.List(ctx, inventory.StockFilter{LowStockOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list low product stock: %w", err)
	}
	ingredients, _, err := s.ingredients.FindAll(ctx, inventory.IngredientFilter{LowStockOnly: true, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list low ingredient stock: %w", err)
	}

	out := make([]LowStockItem, 0, len(products)+len(ingredients))
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		out = append(out, LowStockItem{
			ItemType:    string(inventory.ItemTypeProduct),
			ItemID:      p.ProductID,
			Name:        p.ProductName,
			Unit:        p.Unit,
			Quantity:    p.Quantity,
			MinQuantity: p.MinQuantity,
		})
	}
	for _, i := range ingredients {
		out = append(out, LowStockItem{
			ItemType:    string(inventory.ItemTypeIngredient),
			ItemID:      i.ID,
			Name:        i.Name,
			Unit:        i.Unit,
			Quantity:    i.Quantity,
			MinQuantity: i.MinQuantity,
		})
	}
	return out, nil
}

// CountBelowMinimum counts products under their minimum
func (s *Service) CountBelowMinimum(ctx context.Context) (int64, error) {
	return s.stock.CountBelowMinimum(ctx)
}
