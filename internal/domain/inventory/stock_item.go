package inventory

import (
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem is the finished-goods stock of one product
type StockItem struct {
	shared.BaseAggregateRoot
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	MinQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "inventory_items"
}

// NewStockItem creates an empty stock record for a product
func NewStockItem(productID uuid.UUID) (*StockItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Quantity:          decimal.Zero,
		MinQuantity:       decimal.Zero,
	}, nil
}

// Restock adds stock (delivery from the oven, purchase of resale goods)
func (s *StockItem) Restock(quantity decimal.Decimal, reason MovementReason) (*Movement, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	s.Quantity = s.Quantity.Add(quantity)
	s.touch()
	return NewMovement(ItemTypeProduct, s.ProductID, MovementIn, reason, quantity, s.Quantity)
}

// Remove takes stock out for waste or manual corrections. It never goes below zero.
func (s *StockItem) Remove(quantity decimal.Decimal, reason MovementReason) (*Movement, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.Quantity.LessThan(quantity) {
		return nil, shared.ErrInsufficientStock
	}
	wasBelow := s.IsBelowMinimum()
	s.Quantity = s.Quantity.Sub(quantity)
	s.touch()
	if !wasBelow && s.IsBelowMinimum() {
		s.AddDomainEvent(NewStockBelowMinimumEvent(ItemTypeProduct, s.ProductID, s.Quantity, s.MinQuantity))
	}
	return NewMovement(ItemTypeProduct, s.ProductID, MovementOut, reason, quantity, s.Quantity)
}

// AdjustTo sets stock to a physically counted value
func (s *StockItem) AdjustTo(counted decimal.Decimal) (*Movement, error) {
	if counted.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	delta := counted.Sub(s.Quantity).Abs()
	s.Quantity = counted
	s.touch()
	return NewMovement(ItemTypeProduct, s.ProductID, MovementAdjust, ReasonManual, delta, s.Quantity)
}

// SetMinimum sets the low-stock threshold
func (s *StockItem) SetMinimum(min decimal.Decimal) error {
	if min.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_QUANTITY", "Minimum quantity cannot be negative")
	}
	s.MinQuantity = min
	s.touch()
	return nil
}

// IsBelowMinimum reports whether stock is under the configured threshold
func (s *StockItem) IsBelowMinimum() bool {
	return s.MinQuantity.IsPositive() && s.Quantity.LessThan(s.MinQuantity)
}

func (s *StockItem) touch() {
	s.IncrementVersion()
}
