package production

import (
	"context"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Batch is a quantity of one product taken out of the oven by a baker
type Batch struct {
	shared.BaseEntity
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	BakerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProducedAt time.Time       `gorm:"not null;index"`
	Note       string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "production_batches"
}

// NewBatch validates and creates a batch
func NewBatch(productID, bakerID uuid.UUID, quantity decimal.Decimal, producedAt time.Time, note string) (*Batch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if bakerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BAKER", "Baker ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if producedAt.IsZero() {
		producedAt = time.Now()
	}
	if producedAt.After(time.Now().Add(time.Hour)) {
		return nil, shared.NewDomainError("INVALID_DATE", "Production time cannot be in the future")
	}
	return &Batch{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Quantity:   quantity,
		BakerID:    bakerID,
		ProducedAt: producedAt,
		Note:       note,
	}, nil
}

// Consumption is the amount of one ingredient a batch used
type Consumption struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
}

// Consumptions multiplies a recipe (ingredient -> quantity per unit) by the batch size
func (b *Batch) Consumptions(recipe map[uuid.UUID]decimal.Decimal) []Consumption {
	out := make([]Consumption, 0, len(recipe))
	for id, perUnit := range recipe {
		out = append(out, Consumption{IngredientID: id, Quantity: perUnit.Mul(b.Quantity).Round(3)})
	}
	return out
}

// Repository persists batches
type Repository interface {
	Create(ctx context.Context, batch *Batch) error
	FindBetween(ctx context.Context, from, to time.Time) ([]Batch, error)
}
