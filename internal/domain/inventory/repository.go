package inventory

import (
	"context"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockView is a stock row joined with its product for listings
type StockView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	IsActive    bool            `json:"is_active"`
}

// StockFilter narrows stock listings
type StockFilter struct {
	shared.Filter
	LowStockOnly bool
}

// StockItemRepository persists finished-goods stock.
// Every method resolves its connection from ctx, so calls made inside a
// transaction scope take part in that transaction.
type StockItemRepository interface {
	FindByProductID(ctx context.Context, productID uuid.UUID) (*StockItem, error)
	List(ctx context.Context, filter StockFilter) ([]StockView, int64, error)
	CountBelowMinimum(ctx context.Context) (int64, error)
	Create(ctx context.Context, item *StockItem) error
	// SaveWithLock updates the row if its version is still item.Version-1
	SaveWithLock(ctx context.Context, item *StockItem) error
	// DecreaseIfAvailable atomically subtracts quantity and returns the updated
	// row. With allowNegative false the update only applies when quantity <= stock;
	// ok reports whether it did.
	DecreaseIfAvailable(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal, allowNegative bool) (item *StockItem, ok bool, err error)
	// Increase atomically adds quantity and returns the updated row
	Increase(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) (*StockItem, error)
}

// IngredientFilter narrows ingredient listings
type IngredientFilter struct {
	shared.Filter
	LowStockOnly bool
	ActiveOnly   bool
}

// IngredientRepository persists raw materials
type IngredientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Ingredient, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Ingredient, error)
	FindAll(ctx context.Context, filter IngredientFilter) ([]Ingredient, int64, error)
	ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, ingredient *Ingredient) error
	SaveWithLock(ctx context.Context, ingredient *Ingredient) error
}

// MovementFilter narrows ledger listings
type MovementFilter struct {
	shared.Filter
	ItemType ItemType
	ItemID   *uuid.UUID
	OrderID  *uuid.UUID
	Reason   MovementReason
}

// MovementRepository is the append-only stock ledger
type MovementRepository interface {
	Create(ctx context.Context, movements ...*Movement) error
	// ExistsForOrder reports whether any movement with reason was written for the order
	ExistsForOrder(ctx context.Context, orderID uuid.UUID, reason MovementReason) (bool, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID, reason MovementReason) ([]Movement, error)
	FindAll(ctx context.Context, filter MovementFilter) ([]Movement, int64, error)
}
