package order

import (
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one line submitted by the storefront cart or the POS
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Notes     string          `json:"notes" binding:"max=255"`
}

// QuoteRequest prices a cart without creating anything
type QuoteRequest struct {
	Fulfillment order.Fulfillment `json:"fulfillment" binding:"omitempty,oneof=PICKUP DELIVERY"`
	Lines       []CartLine        `json:"lines" binding:"required,min=1,dive"`
}

// QuoteLine is a priced cart line
type QuoteLine struct {
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      decimal.Decimal `json:"quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Available     decimal.Decimal `json:"available"`
	InStock       bool            `json:"in_stock"`
	MadeToOrder   bool            `json:"made_to_order"`
	EarliestReady time.Time       `json:"earliest_ready"`
}

// QuoteResponse is the priced cart
type QuoteResponse struct {
	Lines         []QuoteLine     `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Total         decimal.Decimal `json:"total"`
	MinimumAmount decimal.Decimal `json:"minimum_amount"`
	MeetsMinimum  bool            `json:"meets_minimum"`
	EarliestReady time.Time       `json:"earliest_ready"`
}

// CheckoutRequest turns a cart into an online order
type CheckoutRequest struct {
	CustomerName    string              `json:"customer_name" binding:"required,min=2,max=120"`
	CustomerPhone   string              `json:"customer_phone" binding:"omitempty,phone"`
	CustomerEmail   string              `json:"customer_email" binding:"omitempty,email,max=120"`
	Fulfillment     order.Fulfillment   `json:"fulfillment" binding:"required,oneof=PICKUP DELIVERY"`
	DeliveryAddress string              `json:"delivery_address" binding:"max=255"`
	ScheduledFor    *time.Time          `json:"scheduled_for"`
	PaymentMethod   order.PaymentMethod `json:"payment_method" binding:"required,oneof=CASH TRANSFER QR CARD"`
	Notes           string              `json:"notes" binding:"max=1000"`
	Lines           []CartLine          `json:"lines" binding:"required,min=1,dive"`
}

// SellRequest rings up a counter sale
type SellRequest struct {
	CustomerName  string              `json:"customer_name" binding:"max=120"`
	PaymentMethod order.PaymentMethod `json:"payment_method" binding:"required,oneof=CASH TRANSFER QR CARD"`
	Discount      *decimal.Decimal    `json:"discount"`
	Lines         []CartLine          `json:"lines" binding:"required,min=1,dive"`
}

// ChangeStatusRequest moves an order along its lifecycle
type ChangeStatusRequest struct {
	Status order.Status `json:"status" binding:"required"`
	Reason string       `json:"reason" binding:"max=255"`
}

// CancelRequest cancels an order
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// MarkPaidRequest records a payment
type MarkPaidRequest struct {
	PaymentMethod order.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=CASH TRANSFER QR CARD"`
}

// AssignBakerRequest assigns an order to a baker
type AssignBakerRequest struct {
	BakerID uuid.UUID `json:"baker_id" binding:"required"`
}

// OrderItemResponse is an order line
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Notes       string          `json:"notes,omitempty"`
	MadeToOrder bool            `json:"made_to_order"`
}

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	Number            string              `json:"number"`
	Channel           order.Channel       `json:"channel"`
	CustomerID        *uuid.UUID          `json:"customer_id,omitempty"`
	CustomerName      string              `json:"customer_name"`
	CustomerPhone     string              `json:"customer_phone,omitempty"`
	CustomerEmail     string              `json:"customer_email,omitempty"`
	Fulfillment       order.Fulfillment   `json:"fulfillment"`
	DeliveryAddress   string              `json:"delivery_address,omitempty"`
	ScheduledFor      *time.Time          `json:"scheduled_for,omitempty"`
	Status            order.Status        `json:"status"`
	PaymentMethod     order.PaymentMethod `json:"payment_method"`
	PaymentStatus     order.PaymentStatus `json:"payment_status"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	DeliveryFee       decimal.Decimal     `json:"delivery_fee"`
	Discount          decimal.Decimal     `json:"discount"`
	Total             decimal.Decimal     `json:"total"`
	Notes             string              `json:"notes,omitempty"`
	CancelReason      string              `json:"cancel_reason,omitempty"`
	SellerID          *uuid.UUID          `json:"seller_id,omitempty"`
	BakerID           *uuid.UUID          `json:"baker_id,omitempty"`
	InventoryDeducted bool                `json:"inventory_deducted"`
	Items             []OrderItemResponse `json:"items"`
	ConfirmedAt       *time.Time          `json:"confirmed_at,omitempty"`
	DeliveredAt       *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time          `json:"cancelled_at,omitempty"`
	PaidAt            *time.Time          `json:"paid_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Version           int                 `json:"version"`
}

// ToOrderResponse converts an order to its response
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
			Notes:       it.Notes,
			MadeToOrder: it.MadeToOrder,
		})
	}
	return OrderResponse{
		ID:                o.ID,
		Number:            o.Number,
		Channel:           o.Channel,
		CustomerID:        o.CustomerID,
		CustomerName:      o.CustomerName,
		CustomerPhone:     o.CustomerPhone,
		CustomerEmail:     o.CustomerEmail,
		Fulfillment:       o.Fulfillment,
		DeliveryAddress:   o.DeliveryAddress,
		ScheduledFor:      o.ScheduledFor,
		Status:            o.Status,
		PaymentMethod:     o.PaymentMethod,
		PaymentStatus:     o.PaymentStatus,
		Subtotal:          o.Subtotal,
		DeliveryFee:       o.DeliveryFee,
		Discount:          o.Discount,
		Total:             o.Total,
		Notes:             o.Notes,
		CancelReason:      o.CancelReason,
		SellerID:          o.SellerID,
		BakerID:           o.BakerID,
		InventoryDeducted: o.InventoryDeducted,
		Items:             items,
		ConfirmedAt:       o.ConfirmedAt,
		DeliveredAt:       o.DeliveredAt,
		CancelledAt:       o.CancelledAt,
		PaidAt:            o.PaidAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

// OrderListFilter is the query of order listings
type OrderListFilter struct {
	Search   string         `form:"search"`
	Statuses []order.Status `form:"status"`
	Channel  order.Channel  `form:"channel" binding:"omitempty,oneof=ONLINE POS"`
	From     *time.Time     `form:"from" time_format:"2006-01-02"`
	To       *time.Time     `form:"to" time_format:"2006-01-02"`
	OrderBy  string         `form:"order_by" binding:"omitempty,oneof=created_at number total scheduled_for"`
	OrderDir string         `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Page     int            `form:"page" binding:"omitempty,min=1"`
	PageSize int            `form:"page_size" binding:"omitempty,min=1,max=100"`
}
