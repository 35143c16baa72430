// Package order runs checkout, counter sales and the order lifecycle.
// Every status change passes through Service.ChangeStatus, which keeps
// inventory in step with the order inside the same transaction.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// staleCancelReason is recorded on orders cancelled by CancelStale
const staleCancelReason = "Cancelado automáticamente: pago no recibido"

// ProductLoader loads sellable products
type ProductLoader interface {
	LoadForSale(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*catalog.Product, error)
}

// StockKeeper is the inventory side of the order lifecycle
type StockKeeper interface {
	DeductForOrder(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*inventory.DeductionResult, error)
	RestoreForOrder(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*inventory.DeductionResult, error)
	Availability(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	AllowsNegativeStock(ctx context.Context) bool
}

// SettingsReader exposes the business settings orders depend on
type SettingsReader interface {
	Int(ctx context.Context, key string) int64
	Decimal(ctx context.Context, key string) decimal.Decimal
}

// Metrics records order activity. Implemented by telemetry.
type Metrics interface {
	RecordOrderPlaced(ctx context.Context, channel string)
	RecordStatusChange(ctx context.Context, from, to string)
	RecordConflict(ctx context.Context, operation string)
}

// Service handles order operations
type Service struct {
	txScope  shared.TransactionScope
	orders   order.Repository
	products ProductLoader
	stock    StockKeeper
	settings SettingsReader
	events   shared.OutboxEventSaver
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new order Service
func NewService(
	txScope shared.TransactionScope,
	orders order.Repository,
	products ProductLoader,
	stock StockKeeper,
	settings SettingsReader,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		txScope:  txScope,
		orders:   orders,
		products: products,
		stock:    stock,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventSaver sets where domain events are written
func (s *Service) SetEventSaver(events shared.OutboxEventSaver) {
	s.events = events
}

// SetMetrics sets the order metrics recorder
func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

// Quote prices a cart and reports availability. Nothing is stored.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	priced, err := s.price(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	available, err := s.stock.Availability(ctx, priced.productIDs())
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &QuoteResponse{
		Lines:         make([]QuoteLine, 0, len(priced.lines)),
		Subtotal:      decimal.Zero,
		DeliveryFee:   decimal.Zero,
		MinimumAmount: s.settings.Decimal(ctx, settings.KeyMinimumOrderAmount),
		EarliestReady: priced.earliestReady(now),
	}
	wanted := priced.quantities()
	for _, l := range priced.lines {
		p := priced.products[l.ProductID]
		subtotal := l.UnitPrice.Mul(l.Quantity).Round(2)
		resp.Lines = append(resp.Lines, QuoteLine{
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			UnitPrice:     l.UnitPrice,
			Quantity:      l.Quantity,
			Subtotal:      subtotal,
			Available:     available[l.ProductID],
			InStock:       p.MadeToOrder || !available[l.ProductID].LessThan(wanted[l.ProductID]),
			MadeToOrder:   p.MadeToOrder,
			EarliestReady: p.EarliestReadyAt(now),
		})
		resp.Subtotal = resp.Subtotal.Add(subtotal)
	}
	if req.Fulfillment == order.FulfillmentDelivery {
		resp.DeliveryFee = s.settings.Decimal(ctx, settings.KeyDeliveryFee)
	}
	resp.Total = resp.Subtotal.Add(resp.DeliveryFee)
	resp.MeetsMinimum = !resp.Subtotal.LessThan(resp.MinimumAmount)
	return resp, nil
}

// Checkout places an online order. customerID is nil for guest checkout.
func (s *Service) Checkout(ctx context.Context, customerID *uuid.UUID, req CheckoutRequest) (*OrderResponse, error) {
	priced, err := s.price(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	scheduled, err := priced.schedule(now, req.ScheduledFor)
	if err != nil {
		return nil, err
	}

	minimum := s.settings.Decimal(ctx, settings.KeyMinimumOrderAmount)
	if subtotal := priced.subtotal(); subtotal.LessThan(minimum) {
		return nil, shared.NewDomainError("BELOW_MINIMUM",
			fmt.Sprintf("Minimum order amount is %s", minimum.StringFixed(2)))
	}
	if err := s.checkStock(ctx, priced); err != nil {
		return nil, err
	}

	var o *order.Order
	err = s.txScope.Execute(ctx, func(ctx context.Context) error {
		number, err := s.orders.NextNumber(ctx, now)
		if err != nil {
			return fmt.Errorf("allocate order number: %w", err)
		}
		o, err = order.Place(order.PlaceInput{
			Number: number,
			Customer: order.Customer{
				ID:    customerID,
				Name:  req.CustomerName,
				Phone: strings.TrimSpace(req.CustomerPhone),
				Email: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
			},
			Fulfillment:     req.Fulfillment,
			DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
			ScheduledFor:    scheduled,
			PaymentMethod:   req.PaymentMethod,
			DeliveryFee:     s.settings.Decimal(ctx, settings.KeyDeliveryFee),
			Notes:           req.Notes,
			Lines:           priced.lines,
		})
		if err != nil {
			return err
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return err
		}
		return s.flushEvents(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("number", o.Number),
		zap.String("total", o.Total.String()))
	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(ctx, string(o.Channel))
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Sell records a counter sale. The order is created DELIVERED and PAID and
// its stock is deducted in the same transaction.
func (s *Service) Sell(ctx context.Context, sellerID uuid.UUID, req SellRequest) (*OrderResponse, error) {
	priced, err := s.price(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	discount := decimal.Zero
	if req.Discount != nil {
		discount = *req.Discount
	}

	var o *order.Order
	err = s.txScope.Execute(ctx, func(ctx context.Context) error {
		number, err := s.orders.NextNumber(ctx, s.now())
		if err != nil {
			return fmt.Errorf("allocate order number: %w", err)
		}
		o, err = order.Sell(order.SellInput{
			Number:        number,
			CustomerName:  req.CustomerName,
			PaymentMethod: req.PaymentMethod,
			SellerID:      sellerID,
			Discount:      discount,
			Lines:         priced.lines,
		})
		if err != nil {
			return err
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return err
		}
		if err := s.flushEvents(ctx, o); err != nil {
			return err
		}
		if _, err := s.stock.DeductForOrder(ctx, o.ID, &sellerID); err != nil {
			return err
		}
		o, err = s.orders.FindByID(ctx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Counter sale recorded",
		zap.String("order_id", o.ID.String()),
		zap.String("number", o.Number),
		zap.String("seller_id", sellerID.String()),
		zap.String("total", o.Total.String()))
	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(ctx, string(o.Channel))
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ChangeStatus moves an order to req.Status. In one transaction it saves
// the order under its version check, deducts stock when the new status is
// CONFIRMED or DELIVERED, restores it when a deducted order is cancelled and
// writes the order's events to the outbox. Any failure rolls back all of it.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeStatusRequest, actorID *uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "change_status",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrToStatus, string(req.Status)))
	defer span.End()

	var (
		o    *order.Order
		from order.Status
	)
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status

		if req.Status == order.StatusCancelled {
			err = o.Cancel(strings.TrimSpace(req.Reason), actorID)
		} else {
			err = o.TransitionTo(req.Status, actorID)
		}
		if err != nil {
			return err
		}
		if err := s.orders.SaveWithLock(ctx, o); err != nil {
			return err
		}
		if err := s.syncInventory(ctx, o, actorID); err != nil {
			return err
		}
		if err := s.flushEvents(ctx, o); err != nil {
			return err
		}
		o, err = s.orders.FindByID(ctx, id)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if s.metrics != nil && errors.Is(err, shared.ErrConcurrencyConflict) {
			s.metrics.RecordConflict(ctx, "change_status")
		}
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderNumber, o.Number, telemetry.SpanAttrFromStatus, string(from))

	s.logger.Info("Order status changed",
		zap.String("order_id", o.ID.String()),
		zap.String("number", o.Number),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
		zap.Bool("inventory_deducted", o.InventoryDeducted))
	if s.metrics != nil {
		s.metrics.RecordStatusChange(ctx, string(from), string(o.Status))
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *Service) syncInventory(ctx context.Context, o *order.Order, actorID *uuid.UUID) error {
	switch {
	case o.Status.DeductsInventory():
		_, err := s.stock.DeductForOrder(ctx, o.ID, actorID)
		return err
	case o.Status == order.StatusCancelled && o.InventoryDeducted:
		_, err := s.stock.RestoreForOrder(ctx, o.ID, actorID)
		return err
	}
	return nil
}

// Cancel cancels an order on behalf of staff
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req CancelRequest, actorID *uuid.UUID) (*OrderResponse, error) {
	return s.ChangeStatus(ctx, id, ChangeStatusRequest{Status: order.StatusCancelled, Reason: req.Reason}, actorID)
}

// CancelOwn lets a customer cancel their order while it is still PENDING
func (s *Service) CancelOwn(ctx context.Context, id, customerID uuid.UUID, req CancelRequest) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(customerID) {
		return nil, shared.ErrNotFound
	}
	if o.Status != order.StatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Only pending orders can be cancelled; please contact the store")
	}
	return s.Cancel(ctx, id, req, &customerID)
}

// CancelStale cancels PENDING unpaid online orders older than the
// order.stale_after_hours setting. It returns how many were cancelled.
func (s *Service) CancelStale(ctx context.Context, limit int) (int, error) {
	hours := s.settings.Int(ctx, settings.KeyStaleAfterHours)
	if hours <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-time.Duration(hours) * time.Hour)
	stale, err := s.orders.FindStale(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("find stale orders: %w", err)
	}

	cancelled := 0
	for i := range stale {
		_, err := s.Cancel(ctx, stale[i].ID, CancelRequest{Reason: staleCancelReason}, nil)
		if err != nil {
			// a concurrent change wins; the order is no longer stale
			s.logger.Warn("Failed to cancel stale order",
				zap.String("order_id", stale[i].ID.String()),
				zap.Error(err))
			continue
		}
		cancelled++
	}
	if cancelled > 0 {
		s.logger.Info("Cancelled stale orders", zap.Int("count", cancelled), zap.Time("cutoff", cutoff))
	}
	return cancelled, nil
}

// MarkPaid records payment of an order
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, req MarkPaidRequest) (*OrderResponse, error) {
	return s.mutate(ctx, id, func(o *order.Order) error {
		return o.MarkPaid(req.PaymentMethod)
	})
}

// AssignBaker assigns an order to a baker
func (s *Service) AssignBaker(ctx context.Context, id uuid.UUID, req AssignBakerRequest) (*OrderResponse, error) {
	return s.mutate(ctx, id, func(o *order.Order) error {
		return o.AssignBaker(req.BakerID)
	})
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, change func(*order.Order) error) (*OrderResponse, error) {
	var o *order.Order
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := change(o); err != nil {
			return err
		}
		if err := s.orders.SaveWithLock(ctx, o); err != nil {
			return err
		}
		return s.flushEvents(ctx, o)
	})
	if err != nil {
		if s.metrics != nil && errors.Is(err, shared.ErrConcurrencyConflict) {
			s.metrics.RecordConflict(ctx, "update")
		}
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Get returns any order
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetOwn returns an order placed by customerID. Orders of other customers
// are reported as not found.
func (s *Service) GetOwn(ctx context.Context, id, customerID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(customerID) {
		return nil, shared.ErrNotFound
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByNumber looks an order up by its printed number
func (s *Service) GetByNumber(ctx context.Context, number string) (*OrderResponse, error) {
	o, err := s.orders.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List lists all orders
func (s *Service) List(ctx context.Context, filter OrderListFilter) (shared.Paginated[OrderResponse], error) {
	return s.list(ctx, filter, nil)
}

// ListOwn lists the orders of one customer
func (s *Service) ListOwn(ctx context.Context, customerID uuid.UUID, filter OrderListFilter) (shared.Paginated[OrderResponse], error) {
	return s.list(ctx, filter, &customerID)
}

func (s *Service) list(ctx context.Context, filter OrderListFilter, customerID *uuid.UUID) (shared.Paginated[OrderResponse], error) {
	orderBy, dir := filter.OrderBy, filter.OrderDir
	if orderBy == "" {
		orderBy, dir = "created_at", "desc"
	}
	f := order.Filter{
		Filter:     shared.NewFilter(filter.Page, filter.PageSize, orderBy, dir, filter.Search),
		CustomerID: customerID,
		Statuses:   filter.Statuses,
		Channel:    filter.Channel,
		From:       filter.From,
		To:         filter.To,
	}
	orders, total, err := s.orders.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

func (s *Service) checkStock(ctx context.Context, priced *pricedCart) error {
	if s.stock.AllowsNegativeStock(ctx) {
		return nil
	}
	wanted := priced.quantities()
	available, err := s.stock.Availability(ctx, priced.productIDs())
	if err != nil {
		return err
	}
	for _, l := range priced.lines {
		p := priced.products[l.ProductID]
		if p.MadeToOrder {
			continue
		}
		if available[l.ProductID].LessThan(wanted[l.ProductID]) {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Only %s of %s left", available[l.ProductID].String(), p.Name))
		}
	}
	return nil
}

func (s *Service) flushEvents(ctx context.Context, o *order.Order) error {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return nil
	}
	return s.events.SaveEvents(ctx, events...)
}
