package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is an order line with a price snapshot taken at checkout
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(150);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes       string          `gorm:"type:varchar(255)"`
	MadeToOrder bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// LineInput describes one requested line
type LineInput struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
	Notes       string
	MadeToOrder bool
}

// Customer holds the contact data captured on the order
type Customer struct {
	ID    *uuid.UUID
	Name  string
	Phone string
	Email string
}

// Order is a customer order and the aggregate root of the ordering context
type Order struct {
	shared.BaseAggregateRoot
	Number          string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Channel         Channel         `gorm:"type:varchar(10);not null"`
	CustomerID      *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName    string          `gorm:"type:varchar(120);not null"`
	CustomerPhone   string          `gorm:"type:varchar(30)"`
	CustomerEmail   string          `gorm:"type:varchar(120)"`
	Fulfillment     Fulfillment     `gorm:"type:varchar(10);not null"`
	DeliveryAddress string          `gorm:"type:varchar(255)"`
	ScheduledFor    *time.Time      `gorm:"index"`
	Status          Status          `gorm:"type:varchar(20);not null;index"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(10);not null"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(10);not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DeliveryFee     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes           string          `gorm:"type:text"`
	CancelReason    string          `gorm:"type:varchar(255)"`
	SellerID        *uuid.UUID      `gorm:"type:uuid"`
	BakerID         *uuid.UUID      `gorm:"type:uuid;index"`
	ConfirmedAt     *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	PaidAt          *time.Time

	// Deduction bookkeeping. These columns are only written by the
	// conditional claims in OrderRepository, never by SaveWithLock.
	InventoryDeducted   bool `gorm:"not null;default:false"`
	InventoryDeductedAt *time.Time
	InventoryRestored   bool `gorm:"not null;default:false"`

	Items []Item `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// PlaceInput holds everything needed to place an online order
type PlaceInput struct {
	Number          string
	Customer        Customer
	Fulfillment     Fulfillment
	DeliveryAddress string
	ScheduledFor    *time.Time
	PaymentMethod   PaymentMethod
	DeliveryFee     decimal.Decimal
	Notes           string
	Lines           []LineInput
}

// Place creates a PENDING online order
func Place(in PlaceInput) (*Order, error) {
	if strings.TrimSpace(in.Customer.Name) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name is required")
	}
	if in.Customer.Phone == "" && in.Customer.Email == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "A phone or email is required")
	}
	if !in.Fulfillment.IsValid() {
		return nil, shared.NewDomainError("INVALID_FULFILLMENT", "Fulfillment must be PICKUP or DELIVERY")
	}
	if in.Fulfillment == FulfillmentDelivery && strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Delivery address is required for delivery orders")
	}
	if !in.PaymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	o := newOrder(in.Number, ChannelOnline, in.Customer, in.PaymentMethod)
	o.Fulfillment = in.Fulfillment
	o.DeliveryAddress = in.DeliveryAddress
	o.ScheduledFor = in.ScheduledFor
	o.Notes = in.Notes
	if in.Fulfillment == FulfillmentDelivery {
		o.DeliveryFee = in.DeliveryFee
	}
	if err := o.setLines(in.Lines); err != nil {
		return nil, err
	}

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// SellInput holds a counter sale rung up at the POS
type SellInput struct {
	Number        string
	CustomerName  string
	PaymentMethod PaymentMethod
	SellerID      uuid.UUID
	Discount      decimal.Decimal
	Lines         []LineInput
}

// Sell creates a POS order that is already DELIVERED and PAID
func Sell(in SellInput) (*Order, error) {
	if in.SellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller is required")
	}
	if !in.PaymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		name = "Mostrador"
	}

	o := newOrder(in.Number, ChannelPOS, Customer{Name: name}, in.PaymentMethod)
	o.Fulfillment = FulfillmentPickup
	o.SellerID = &in.SellerID
	if in.Discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	o.Discount = in.Discount
	if err := o.setLines(in.Lines); err != nil {
		return nil, err
	}

	now := time.Now()
	o.Status = StatusDelivered
	o.PaymentStatus = PaymentStatusPaid
	o.ConfirmedAt = &now
	o.DeliveredAt = &now
	o.PaidAt = &now

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

func newOrder(number string, channel Channel, c Customer, method PaymentMethod) *Order {
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Channel:           channel,
		CustomerID:        c.ID,
		CustomerName:      strings.TrimSpace(c.Name),
		CustomerPhone:     c.Phone,
		CustomerEmail:     c.Email,
		Status:            StatusPending,
		PaymentMethod:     method,
		PaymentStatus:     PaymentStatusPending,
		DeliveryFee:       decimal.Zero,
		Discount:          decimal.Zero,
	}
}

func (o *Order) setLines(lines []LineInput) error {
	if len(lines) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
		}
		if !l.Quantity.IsPositive() {
			return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if l.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		items = append(items, Item{
			ID:          uuid.New(),
			OrderID:     o.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Subtotal:    l.UnitPrice.Mul(l.Quantity).Round(2),
			Notes:       l.Notes,
			MadeToOrder: l.MadeToOrder,
		})
	}
	o.Items = items
	o.recalculate()
	return nil
}

func (o *Order) recalculate() {
	subtotal := decimal.Zero
	for _, it := range o.Items {
		subtotal = subtotal.Add(it.Subtotal)
	}
	o.Subtotal = subtotal
	total := subtotal.Add(o.DeliveryFee).Sub(o.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Total = total
}

// ApplyDiscount sets a flat discount; the total never goes below zero
func (o *Order) ApplyDiscount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change a %s order", o.Status))
	}
	o.Discount = amount
	o.recalculate()
	o.touch()
	return nil
}

// TransitionTo moves the order to next, recording timestamps and an event
func (o *Order) TransitionTo(next Status, actorID *uuid.UUID) error {
	if next == StatusCancelled {
		return o.Cancel("", actorID)
	}
	if !next.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", next))
	}
	if !o.Status.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot move order from %s to %s", o.Status, next))
	}
	if next == StatusOutForDelivery && o.Fulfillment != FulfillmentDelivery {
		return shared.NewDomainError("INVALID_STATE", "Pickup orders are not dispatched")
	}

	prev := o.Status
	now := time.Now()
	o.Status = next
	switch next {
	case StatusConfirmed:
		o.ConfirmedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
		if o.ConfirmedAt == nil {
			o.ConfirmedAt = &now
		}
	}
	o.touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev, actorID))
	return nil
}

// Cancel cancels a non-terminal order
func (o *Order) Cancel(reason string, actorID *uuid.UUID) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	prev := o.Status
	now := time.Now()
	o.Status = StatusCancelled
	o.CancelReason = reason
	o.CancelledAt = &now
	if o.PaymentStatus == PaymentStatusPaid {
		o.PaymentStatus = PaymentStatusRefunded
	}
	o.touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev, actorID))
	return nil
}

// MarkPaid records payment
func (o *Order) MarkPaid(method PaymentMethod) error {
	if o.Status == StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot pay a cancelled order")
	}
	if o.PaymentStatus == PaymentStatusPaid {
		return shared.NewDomainError("ALREADY_PAID", "Order is already paid")
	}
	if method != "" {
		if !method.IsValid() {
			return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
		}
		o.PaymentMethod = method
	}
	now := time.Now()
	o.PaymentStatus = PaymentStatusPaid
	o.PaidAt = &now
	o.touch()
	o.AddDomainEvent(NewOrderPaidEvent(o))
	return nil
}

// AssignBaker assigns the order to a baker for production
func (o *Order) AssignBaker(bakerID uuid.UUID) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot assign a %s order", o.Status))
	}
	o.BakerID = &bakerID
	o.touch()
	return nil
}

// Quantities sums the ordered quantity per product
func (o *Order) Quantities() map[uuid.UUID]decimal.Decimal {
	q := make(map[uuid.UUID]decimal.Decimal, len(o.Items))
	for _, it := range o.Items {
		q[it.ProductID] = q[it.ProductID].Add(it.Quantity)
	}
	return q
}

// MadeToOrderProducts lists the products on the order that are baked to order
func (o *Order) MadeToOrderProducts() map[uuid.UUID]bool {
	m := make(map[uuid.UUID]bool)
	for _, it := range o.Items {
		if it.MadeToOrder {
			m[it.ProductID] = true
		}
	}
	return m
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.CustomerID != nil && *o.CustomerID == userID
}

func (o *Order) touch() {
	o.IncrementVersion()
}

// FormatNumber renders the order number for a day and sequence
func FormatNumber(day time.Time, seq int) string {
	return fmt.Sprintf("PN-%s-%04d", day.Format("20060102"), seq)
}
