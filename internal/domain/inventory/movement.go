package inventory

import (
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemType identifies which stock a movement belongs to
type ItemType string

const (
	ItemTypeProduct    ItemType = "PRODUCT"
	ItemTypeIngredient ItemType = "INGREDIENT"
)

// MovementType is the direction of a stock movement
type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

// MovementReason explains why stock moved
type MovementReason string

const (
	ReasonSale                  MovementReason = "SALE"
	ReasonSaleReversal          MovementReason = "SALE_REVERSAL"
	ReasonRestock               MovementReason = "RESTOCK"
	ReasonProduction            MovementReason = "PRODUCTION"
	ReasonProductionConsumption MovementReason = "PRODUCTION_CONSUMPTION"
	ReasonWaste                 MovementReason = "WASTE"
	ReasonManual                MovementReason = "MANUAL"
)

// IsValid returns true if the reason is known
func (r MovementReason) IsValid() bool {
	switch r {
	case ReasonSale, ReasonSaleReversal, ReasonRestock, ReasonProduction,
		ReasonProductionConsumption, ReasonWaste, ReasonManual:
		return true
	}
	return false
}

// Movement is an append-only ledger line. Quantity is always positive;
// Type gives the direction and BalanceAfter the stock right after it.
type Movement struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ItemType     ItemType        `gorm:"type:varchar(20);not null;index:idx_movement_item,priority:1"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_item,priority:2"`
	Type         MovementType    `gorm:"type:varchar(10);not null"`
	Reason       MovementReason  `gorm:"type:varchar(30);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	OrderID      *uuid.UUID      `gorm:"type:uuid;index"`
	UserID       *uuid.UUID      `gorm:"type:uuid"`
	Note         string          `gorm:"type:varchar(255)"`
	CreatedAt    time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "inventory_movements"
}

// NewMovement builds a ledger line
func NewMovement(itemType ItemType, itemID uuid.UUID, mtype MovementType, reason MovementReason, quantity, balanceAfter decimal.Decimal) (*Movement, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Unknown movement reason")
	}
	if quantity.IsNegative() || (quantity.IsZero() && mtype != MovementAdjust) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return &Movement{
		ID:           uuid.New(),
		ItemType:     itemType,
		ItemID:       itemID,
		Type:         mtype,
		Reason:       reason,
		Quantity:     quantity,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now(),
	}, nil
}

// ForOrder links the movement to an order
func (m *Movement) ForOrder(orderID uuid.UUID) *Movement {
	m.OrderID = &orderID
	return m
}

// By records the user who caused the movement
func (m *Movement) By(userID *uuid.UUID) *Movement {
	m.UserID = userID
	return m
}

// WithNote attaches a free-text note
func (m *Movement) WithNote(note string) *Movement {
	m.Note = note
	return m
}

// SignedQuantity returns the quantity with the sign of its effect on stock
func (m *Movement) SignedQuantity() decimal.Decimal {
	if m.Type == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
