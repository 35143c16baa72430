package inventory

import (
	"context"
	"fmt"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Alert types
const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
)

// StockAlertNotifier delivers stock alerts to the shop staff
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// ProductLookup resolves product names for alerts
type ProductLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// StockAlert is a stock level alert
type StockAlert struct {
	ItemType    string `json:"item_type"`
	ItemID      string `json:"item_id"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Quantity    string `json:"quantity"`
	MinQuantity string `json:"min_quantity"`
	AlertType   string `json:"alert_type"`
}

// StockBelowMinimumHandler turns StockBelowMinimum events into alerts
type StockBelowMinimumHandler struct {
	logger      *zap.Logger
	products    ProductLookup
	ingredients inventory.IngredientRepository
	notifier    StockAlertNotifier
}

// NewStockBelowMinimumHandler creates the handler. Lookups may be nil, in
// which case alerts carry the item ID as name.
func NewStockBelowMinimumHandler(logger *zap.Logger, products ProductLookup, ingredients inventory.IngredientRepository) *StockBelowMinimumHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockBelowMinimumHandler{
		logger:      logger,
		products:    products,
		ingredients: ingredients,
	}
}

// WithNotifier sets the notifier used to send alerts
func (h *StockBelowMinimumHandler) WithNotifier(notifier StockAlertNotifier) *StockBelowMinimumHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowMinimumHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowMinimum}
}

// Handle builds the alert and sends it. Notifier failures are logged and
// swallowed so a mail outage does not keep the outbox entry retrying.
func (h *StockBelowMinimumHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*inventory.StockBelowMinimumEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected *inventory.StockBelowMinimumEvent, got %T", event)
	}

	alert := StockAlert{
		ItemType:    string(e.ItemType),
		ItemID:      e.ItemID.String(),
		Name:        e.ItemID.String(),
		Quantity:    e.Quantity.String(),
		MinQuantity: e.MinQuantity.String(),
		AlertType:   AlertLowStock,
	}
	if !e.Quantity.IsPositive() {
		alert.AlertType = AlertOutOfStock
	}
	h.describe(ctx, e, &alert)

	h.logger.Warn("Stock below minimum",
		zap.String("item_type", alert.ItemType),
		zap.String("item", alert.Name),
		zap.String("quantity", alert.Quantity),
		zap.String("min_quantity", alert.MinQuantity),
		zap.String("alert_type", alert.AlertType),
	)

	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		h.logger.Error("Failed to send stock alert", zap.String("item_id", alert.ItemID), zap.Error(err))
	}
	return nil
}

func (h *StockBelowMinimumHandler) describe(ctx context.Context, e *inventory.StockBelowMinimumEvent, alert *StockAlert) {
	switch e.ItemType {
	case inventory.ItemTypeProduct:
		if h.products == nil {
			return
		}
		p, err := h.products.FindByID(ctx, e.ItemID)
		if err != nil {
			h.logger.Debug("Product lookup failed for alert", zap.Error(err))
			return
		}
		alert.Name, alert.Unit = p.Name, p.Unit
	case inventory.ItemTypeIngredient:
		if h.ingredients == nil {
			return
		}
		ing, err := h.ingredients.FindByID(ctx, e.ItemID)
		if err != nil {
			h.logger.Debug("Ingredient lookup failed for alert", zap.Error(err))
			return
		}
		alert.Name, alert.Unit = ing.Name, ing.Unit
	}
}

var _ shared.EventHandler = (*StockBelowMinimumHandler)(nil)

// LoggingStockAlertNotifier logs alerts. Used when mail is not configured.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("item_type", alert.ItemType),
		zap.String("name", alert.Name),
		zap.String("quantity", alert.Quantity),
		zap.String("min_quantity", alert.MinQuantity),
	)
	return nil
}
