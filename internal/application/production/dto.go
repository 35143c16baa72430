package production

import (
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordBatchRequest registers a baked batch
type RecordBatchRequest struct {
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	ProducedAt *time.Time      `json:"produced_at"`
	Note       string          `json:"note" binding:"max=200"`
}

// BatchResponse is the API view of a batch
type BatchResponse struct {
	ID              uuid.UUID        `json:"id"`
	ProductID       uuid.UUID        `json:"product_id"`
	ProductName     string           `json:"product_name,omitempty"`
	Quantity        decimal.Decimal  `json:"quantity"`
	BakerID         uuid.UUID        `json:"baker_id"`
	ProducedAt      time.Time        `json:"produced_at"`
	Note            string           `json:"note,omitempty"`
	StockAfter      *decimal.Decimal `json:"stock_after,omitempty"`
	IngredientsUsed int              `json:"ingredients_used"`
}

func toBatchResponse(b *production.Batch) BatchResponse {
	return BatchResponse{
		ID:         b.ID,
		ProductID:  b.ProductID,
		Quantity:   b.Quantity,
		BakerID:    b.BakerID,
		ProducedAt: b.ProducedAt,
		Note:       b.Note,
	}
}

// PlanLine is what the bakery has to produce of one product on a day
type PlanLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Ordered     decimal.Decimal `json:"ordered"`
	Orders      int64           `json:"orders"`
	InStock     decimal.Decimal `json:"in_stock"`
	ToBake      decimal.Decimal `json:"to_bake"`
}

// PlanResponse is the production plan of a day
type PlanResponse struct {
	Day   string     `json:"day"`
	Lines []PlanLine `json:"lines"`
}
