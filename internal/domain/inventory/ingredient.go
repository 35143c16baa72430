package inventory

import (
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Ingredient units
const (
	IngredientUnitKilo  = "kg"
	IngredientUnitGram  = "g"
	IngredientUnitLiter = "l"
	IngredientUnitPiece = "unidad"
)

// Ingredient is a raw material consumed by production (flour, butter, eggs)
type Ingredient struct {
	shared.BaseAggregateRoot
	Name        string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Unit        string          `gorm:"type:varchar(10);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	MinQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	CostPerUnit decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Ingredient) TableName() string {
	return "ingredients"
}

// NewIngredient creates a new ingredient with zero stock
func NewIngredient(name, unit string, minQuantity, costPerUnit decimal.Decimal) (*Ingredient, error) {
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Ingredient name must be 1-100 characters")
	}
	switch unit {
	case IngredientUnitKilo, IngredientUnitGram, IngredientUnitLiter, IngredientUnitPiece:
	default:
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit must be one of kg, g, l, unidad")
	}
	if minQuantity.IsNegative() || costPerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Minimum and cost cannot be negative")
	}
	return &Ingredient{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Unit:              unit,
		Quantity:          decimal.Zero,
		MinQuantity:       minQuantity,
		CostPerUnit:       costPerUnit,
		IsActive:          true,
	}, nil
}

// Update changes descriptive data and thresholds
func (i *Ingredient) Update(name string, minQuantity, costPerUnit decimal.Decimal) error {
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Ingredient name must be 1-100 characters")
	}
	if minQuantity.IsNegative() || costPerUnit.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum and cost cannot be negative")
	}
	i.Name = name
	i.MinQuantity = minQuantity
	i.CostPerUnit = costPerUnit
	i.touch()
	return nil
}

// Purchase adds purchased stock
func (i *Ingredient) Purchase(quantity decimal.Decimal) (*Movement, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	i.Quantity = i.Quantity.Add(quantity)
	i.touch()
	return NewMovement(ItemTypeIngredient, i.ID, MovementIn, ReasonRestock, quantity, i.Quantity)
}

// Consume takes stock out for production. Bakers record what they actually
// used, so the balance may go negative; callers log a warning when it does.
func (i *Ingredient) Consume(quantity decimal.Decimal) (*Movement, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	wasBelow := i.IsBelowMinimum()
	i.Quantity = i.Quantity.Sub(quantity)
	i.touch()
	if !wasBelow && i.IsBelowMinimum() {
		i.AddDomainEvent(NewStockBelowMinimumEvent(ItemTypeIngredient, i.ID, i.Quantity, i.MinQuantity))
	}
	return NewMovement(ItemTypeIngredient, i.ID, MovementOut, ReasonProductionConsumption, quantity, i.Quantity)
}

// AdjustTo sets stock to a physically counted value
func (i *Ingredient) AdjustTo(counted decimal.Decimal) (*Movement, error) {
	if counted.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	delta := counted.Sub(i.Quantity).Abs()
	i.Quantity = counted
	i.touch()
	return NewMovement(ItemTypeIngredient, i.ID, MovementAdjust, ReasonManual, delta, i.Quantity)
}

// SetActive enables or disables the ingredient
func (i *Ingredient) SetActive(active bool) {
	i.IsActive = active
	i.touch()
}

// IsBelowMinimum reports whether stock is under the configured threshold
func (i *Ingredient) IsBelowMinimum() bool {
	return i.MinQuantity.IsPositive() && i.Quantity.LessThan(i.MinQuantity)
}

// IsNegative reports whether recorded consumption exceeded recorded stock
func (i *Ingredient) IsNegative() bool {
	return i.Quantity.IsNegative()
}

func (i *Ingredient) touch() {
	i.IncrementVersion()
}
