package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockItemRepository implements inventory.StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

func (r *GormStockItemRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db)
}

// FindByProductID finds the stock row of a product
func (r *GormStockItemRepository) FindByProductID(ctx context.Context, productID uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.conn(ctx).First(&item, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// List returns stock joined with product data
func (r *GormStockItemRepository) List(ctx context.Context, filter inventory.StockFilter) ([]inventory.StockView, int64, error) {
	query := r.conn(ctx).
		Table("inventory_items").
		Joins("JOIN products ON products.id = inventory_items.product_id")

	if filter.LowStockOnly {
		query = query.Where("inventory_items.min_quantity > 0 AND inventory_items.quantity < inventory_items.min_quantity")
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	total, err := countOf(query)
	if err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, StockSortFields, "name")
	order := "products.name ASC"
	if sortField == "quantity" {
		order = "inventory_items.quantity " + ValidateSortOrder(filter.OrderDir)
	}

	var rows []inventory.StockView
	err = paginate(query, filter.Filter).
		Select("inventory_items.product_id, products.name AS product_name, products.unit, " +
			"inventory_items.quantity, inventory_items.min_quantity, products.is_active").
		Order(order).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountBelowMinimum counts products whose stock is under their minimum
func (r *GormStockItemRepository) CountBelowMinimum(ctx context.Context) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&inventory.StockItem{}).
		Where("min_quantity > 0 AND quantity < min_quantity").
		Count(&count).Error
	return count, err
}

// Create inserts a stock row
func (r *GormStockItemRepository) Create(ctx context.Context, item *inventory.StockItem) error {
	return r.conn(ctx).Create(item).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormStockItemRepository) SaveWithLock(ctx context.Context, item *inventory.StockItem) error {
	result := r.conn(ctx).
		Model(&inventory.StockItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]any{
			"quantity":     item.Quantity,
			"min_quantity": item.MinQuantity,
			"version":      item.Version,
			"updated_at":   item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DecreaseIfAvailable subtracts quantity in a single conditional UPDATE. The
// row lock taken by the update is held until the surrounding transaction ends,
// so the re-read balance is the one this caller produced. ctx must carry a
// transaction.
func (r *GormStockItemRepository) DecreaseIfAvailable(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal, allowNegative bool) (*inventory.StockItem, bool, error) {
	if err := MustBeInTransaction(ctx, "stock decrease"); err != nil {
		return nil, false, err
	}
	db := r.conn(ctx)
	query := db.Model(&inventory.StockItem{}).Where("product_id = ?", productID)
	if !allowNegative {
		query = query.Where("quantity >= ?", quantity)
	}
	result := query.UpdateColumns(map[string]any{
		"quantity":   gorm.Expr("quantity - ?", quantity),
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}

	item, err := r.FindByProductID(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// Increase adds quantity in a single UPDATE and returns the updated row
func (r *GormStockItemRepository) Increase(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) (*inventory.StockItem, error) {
	result := r.conn(ctx).
		Model(&inventory.StockItem{}).
		Where("product_id = ?", productID).
		UpdateColumns(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, shared.ErrNotFound
	}
	return r.FindByProductID(ctx, productID)
}

var _ inventory.StockItemRepository = (*GormStockItemRepository)(nil)
