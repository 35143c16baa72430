package inventory

import (
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockResponse is a product's finished-goods stock
type StockResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	MinQuantity    decimal.Decimal `json:"min_quantity"`
	IsBelowMinimum bool            `json:"is_below_minimum"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToStockResponse converts a stock item
func ToStockResponse(item *inventory.StockItem) StockResponse {
	return StockResponse{
		ProductID:      item.ProductID,
		Quantity:       item.Quantity,
		MinQuantity:    item.MinQuantity,
		IsBelowMinimum: item.IsBelowMinimum(),
		UpdatedAt:      item.UpdatedAt,
		Version:        item.Version,
	}
}

// StockListFilter is the query of the stock listing
type StockListFilter struct {
	Search       string `form:"search"`
	LowStockOnly bool   `form:"low_stock"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementResponse is one ledger line
type MovementResponse struct {
	ID           uuid.UUID       `json:"id"`
	ItemType     string          `json:"item_type"`
	ItemID       uuid.UUID       `json:"item_id"`
	Type         string          `json:"type"`
	Reason       string          `json:"reason"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	OrderID      *uuid.UUID      `json:"order_id,omitempty"`
	UserID       *uuid.UUID      `json:"user_id,omitempty"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToMovementResponse converts a ledger line
func ToMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		ItemType:     string(m.ItemType),
		ItemID:       m.ItemID,
		Type:         string(m.Type),
		Reason:       string(m.Reason),
		Quantity:     m.Quantity,
		BalanceAfter: m.BalanceAfter,
		OrderID:      m.OrderID,
		UserID:       m.UserID,
		Note:         m.Note,
		CreatedAt:    m.CreatedAt,
	}
}

// MovementListFilter is the query of the ledger listing
type MovementListFilter struct {
	ItemType string     `form:"item_type" binding:"omitempty,oneof=PRODUCT INGREDIENT"`
	ItemID   *uuid.UUID `form:"item_id"`
	OrderID  *uuid.UUID `form:"order_id"`
	Reason   string     `form:"reason"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// RestockRequest adds finished goods
type RestockRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Note      string          `json:"note" binding:"max=255"`
}

// AdjustRequest sets stock to a counted value
type AdjustRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Counted   decimal.Decimal `json:"counted" binding:"required"`
	Note      string          `json:"note" binding:"max=255"`
}

// WasteRequest removes spoiled or damaged goods
type WasteRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Note      string          `json:"note" binding:"max=255"`
}

// SetMinimumRequest sets the low-stock threshold
type SetMinimumRequest struct {
	MinQuantity decimal.Decimal `json:"min_quantity" binding:"required"`
}

// IngredientResponse is a raw material with its stock
type IngredientResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	MinQuantity    decimal.Decimal `json:"min_quantity"`
	CostPerUnit    decimal.Decimal `json:"cost_per_unit"`
	IsActive       bool            `json:"is_active"`
	IsBelowMinimum bool            `json:"is_below_minimum"`
	Version        int             `json:"version"`
}

// ToIngredientResponse converts an ingredient
func ToIngredientResponse(i *inventory.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:             i.ID,
		Name:           i.Name,
		Unit:           i.Unit,
		Quantity:       i.Quantity,
		MinQuantity:    i.MinQuantity,
		CostPerUnit:    i.CostPerUnit,
		IsActive:       i.IsActive,
		IsBelowMinimum: i.IsBelowMinimum(),
		Version:        i.Version,
	}
}

// CreateIngredientRequest registers a raw material
type CreateIngredientRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Unit        string          `json:"unit" binding:"required,oneof=kg g l unidad"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
}

// UpdateIngredientRequest changes a raw material
type UpdateIngredientRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	IsActive    *bool           `json:"is_active"`
}

// IngredientStockRequest purchases or counts an ingredient
type IngredientStockRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Note     string          `json:"note" binding:"max=255"`
}

// IngredientListFilter is the query of the ingredient listing
type IngredientListFilter struct {
	Search       string `form:"search"`
	LowStockOnly bool   `form:"low_stock"`
	ActiveOnly   bool   `form:"active"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Outcome of a deduction or restore call
type Outcome string

const (
	OutcomeApplied Outcome = "APPLIED"
	OutcomeSkipped Outcome = "SKIPPED"
)

// Skip reasons
const (
	SkipAlreadyClaimed   = "flag_already_set"
	SkipMovementsExist   = "movements_exist"
	SkipNothingToRestore = "nothing_to_restore"
)

// DeductionResult reports what DeductForOrder or RestoreForOrder did
type DeductionResult struct {
	OrderID    uuid.UUID              `json:"order_id"`
	Outcome    Outcome                `json:"outcome"`
	SkipReason string                 `json:"skip_reason,omitempty"`
	Lines      []inventory.LineChange `json:"lines,omitempty"`
}

// Applied reports whether stock was changed
func (r *DeductionResult) Applied() bool {
	return r.Outcome == OutcomeApplied
}

// LowStockItem is one entry of the low-stock digest
type LowStockItem struct {
	ItemType    string          `json:"item_type"`
	ItemID      uuid.UUID       `json:"item_id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

func (f StockListFilter) toDomain() inventory.StockFilter {
	return inventory.StockFilter{
		Filter:       shared.NewFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir, f.Search),
		LowStockOnly: f.LowStockOnly,
	}
}
