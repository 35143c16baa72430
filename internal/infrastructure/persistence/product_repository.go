package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db)
}

// FindByID finds a product with its recipe
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.conn(ctx).Preload("Recipe").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySlug finds a product by its slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.conn(ctx).Preload("Recipe").First(&product, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the products with the given IDs; missing IDs are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.conn(ctx).Preload("Recipe").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll lists products matching the filter with the total count
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	query := r.conn(ctx).Model(&catalog.Product{})

	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.Storefront {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("products.is_active = ? AND categories.is_active = ?", true, true)
	}
	if filter.Featured != nil {
		query = query.Where("products.is_featured = ?", *filter.Featured)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
	}

	total, err := countOf(query)
	if err != nil {
		return nil, 0, err
	}

	order := "products.name ASC"
	if filter.OrderBy != "" {
		order = "products." + orderClause(filter.OrderBy, filter.OrderDir, ProductSortFields, "name")
	}
	query = paginate(query, filter.Filter)

	var products []catalog.Product
	if err := query.Select("products.*").Order(order).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ExistsBySlug checks whether another product uses the slug
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.conn(ctx).Model(&catalog.Product{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCategory counts products in a category
func (r *GormProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&catalog.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

// Save creates or updates the product row. When replaceRecipe is set the
// stored recipe lines are replaced by product.Recipe.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product, replaceRecipe bool) error {
	db := r.conn(ctx)
	if err := db.Omit("Recipe").Save(product).Error; err != nil {
		return err
	}
	if !replaceRecipe {
		return nil
	}
	if err := db.Where("product_id = ?", product.ID).Delete(&catalog.RecipeLine{}).Error; err != nil {
		return err
	}
	if len(product.Recipe) == 0 {
		return nil
	}
	return db.Create(&product.Recipe).Error
}

// Delete deletes a product and its recipe
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.conn(ctx)
	if err := db.Where("product_id = ?", id).Delete(&catalog.RecipeLine{}).Error; err != nil {
		return err
	}
	result := db.Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
