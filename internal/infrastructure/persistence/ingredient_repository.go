package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormIngredientRepository implements inventory.IngredientRepository using GORM
type GormIngredientRepository struct {
	db *gorm.DB
}

// NewGormIngredientRepository creates a new GormIngredientRepository
func NewGormIngredientRepository(db *gorm.DB) *GormIngredientRepository {
	return &GormIngredientRepository{db: db}
}

func (r *GormIngredientRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db)
}

// FindByID finds an ingredient by its ID
func (r *GormIngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Ingredient, error) {
	var ingredient inventory.Ingredient
	if err := r.conn(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// FindByIDs finds ingredients by IDs; missing IDs are skipped
func (r *GormIngredientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Ingredient, error) {
	if len(ids) == 0 {
		return []inventory.Ingredient{}, nil
	}
	var ingredients []inventory.Ingredient
	if err := r.conn(ctx).Where("id IN ?", ids).Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// FindAll lists ingredients matching the filter
func (r *GormIngredientRepository) FindAll(ctx context.Context, filter inventory.IngredientFilter) ([]inventory.Ingredient, int64, error) {
	query := r.conn(ctx).Model(&inventory.Ingredient{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.LowStockOnly {
		query = query.Where("min_quantity > 0 AND quantity < min_quantity")
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	total, err := countOf(query)
	if err != nil {
		return nil, 0, err
	}

	order := "name ASC"
	if filter.OrderBy != "" {
		order = orderClause(filter.OrderBy, filter.OrderDir, IngredientSortFields, "name")
	}

	var ingredients []inventory.Ingredient
	if err := paginate(query, filter.Filter).Order(order).Find(&ingredients).Error; err != nil {
		return nil, 0, err
	}
	return ingredients, total, nil
}

// ExistsByName checks whether another ingredient has the name (case-insensitive)
func (r *GormIngredientRepository) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.conn(ctx).Model(&inventory.Ingredient{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts an ingredient
func (r *GormIngredientRepository) Create(ctx context.Context, ingredient *inventory.Ingredient) error {
	return r.conn(ctx).Create(ingredient).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormIngredientRepository) SaveWithLock(ctx context.Context, ingredient *inventory.Ingredient) error {
	result := r.conn(ctx).
		Model(&inventory.Ingredient{}).
		Where("id = ? AND version = ?", ingredient.ID, ingredient.Version-1).
		Updates(map[string]any{
			"name":          ingredient.Name,
			"unit":          ingredient.Unit,
			"quantity":      ingredient.Quantity,
			"min_quantity":  ingredient.MinQuantity,
			"cost_per_unit": ingredient.CostPerUnit,
			"is_active":     ingredient.IsActive,
			"version":       ingredient.Version,
			"updated_at":    ingredient.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ inventory.IngredientRepository = (*GormIngredientRepository)(nil)
