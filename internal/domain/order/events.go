package order

import (
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type of order events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderPaid          = "OrderPaid"
)

// Contact is the customer contact copied into events so handlers do not
// need to load the order again
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// EventLine summarises an order line for notifications
type EventLine struct {
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderPlacedEvent is published when an order is created
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	Number       string          `json:"number"`
	Channel      Channel         `json:"channel"`
	Fulfillment  Fulfillment     `json:"fulfillment"`
	Address      string          `json:"address,omitempty"`
	ScheduledFor *time.Time      `json:"scheduled_for,omitempty"`
	Customer     Contact         `json:"customer"`
	Lines        []EventLine     `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	Payment      PaymentMethod   `json:"payment_method"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	lines := make([]EventLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, EventLine{ProductName: it.ProductName, Quantity: it.Quantity, Subtotal: it.Subtotal})
	}
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Number:          o.Number,
		Channel:         o.Channel,
		Fulfillment:     o.Fulfillment,
		Address:         o.DeliveryAddress,
		ScheduledFor:    o.ScheduledFor,
		Customer:        contactOf(o),
		Lines:           lines,
		Total:           o.Total,
		Payment:         o.PaymentMethod,
	}
}

// OrderStatusChangedEvent is published on every status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID   `json:"order_id"`
	Number       string      `json:"number"`
	Channel      Channel     `json:"channel"`
	Fulfillment  Fulfillment `json:"fulfillment"`
	FromStatus   Status      `json:"from_status"`
	ToStatus     Status      `json:"to_status"`
	CancelReason string      `json:"cancel_reason,omitempty"`
	ActorID      *uuid.UUID  `json:"actor_id,omitempty"`
	Customer     Contact     `json:"customer"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from Status, actorID *uuid.UUID) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Number:          o.Number,
		Channel:         o.Channel,
		Fulfillment:     o.Fulfillment,
		FromStatus:      from,
		ToStatus:        o.Status,
		CancelReason:    o.CancelReason,
		ActorID:         actorID,
		Customer:        contactOf(o),
	}
}

// OrderPaidEvent is published when payment is recorded
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID       `json:"order_id"`
	Number  string          `json:"number"`
	Amount  decimal.Decimal `json:"amount"`
	Method  PaymentMethod   `json:"method"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Number:          o.Number,
		Amount:          o.Total,
		Method:          o.PaymentMethod,
	}
}

func contactOf(o *Order) Contact {
	return Contact{Name: o.CustomerName, Phone: o.CustomerPhone, Email: o.CustomerEmail}
}
