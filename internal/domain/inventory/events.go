package inventory

import (
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeStock = "Stock"
	// AggregateTypeOrder is used for deduction events, which are keyed by order
	AggregateTypeOrder = "Order"
)

// Event type constants
const (
	EventTypeStockBelowMinimum = "StockBelowMinimum"
	EventTypeInventoryDeducted = "InventoryDeducted"
	EventTypeInventoryRestored = "InventoryRestored"
)

// StockBelowMinimumEvent is published when stock crosses below its minimum
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	ItemType    ItemType        `json:"item_type"`
	ItemID      uuid.UUID       `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

// NewStockBelowMinimumEvent creates a new StockBelowMinimumEvent
func NewStockBelowMinimumEvent(itemType ItemType, itemID uuid.UUID, quantity, min decimal.Decimal) *StockBelowMinimumEvent {
	return &StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowMinimum, AggregateTypeStock, itemID),
		ItemType:        itemType,
		ItemID:          itemID,
		Quantity:        quantity,
		MinQuantity:     min,
	}
}

// LineChange is one product's stock change caused by an order
type LineChange struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// InventoryDeductedEvent is published once per order when its stock is taken
type InventoryDeductedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID    `json:"order_id"`
	Lines   []LineChange `json:"lines"`
}

// NewInventoryDeductedEvent creates a new InventoryDeductedEvent
func NewInventoryDeductedEvent(orderID uuid.UUID, lines []LineChange) *InventoryDeductedEvent {
	return &InventoryDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInventoryDeducted, AggregateTypeOrder, orderID),
		OrderID:         orderID,
		Lines:           lines,
	}
}

// InventoryRestoredEvent is published when a cancelled order gives stock back
type InventoryRestoredEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID    `json:"order_id"`
	Lines   []LineChange `json:"lines"`
}

// NewInventoryRestoredEvent creates a new InventoryRestoredEvent
func NewInventoryRestoredEvent(orderID uuid.UUID, lines []LineChange) *InventoryRestoredEvent {
	return &InventoryRestoredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInventoryRestored, AggregateTypeOrder, orderID),
		OrderID:         orderID,
		Lines:           lines,
	}
}
