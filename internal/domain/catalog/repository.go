package catalog

import (
	"context"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	// FindAll returns categories ordered by sort order; activeOnly hides inactive ones
	FindAll(ctx context.Context, activeOnly bool) ([]Category, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	CategoryID *uuid.UUID
	// Storefront restricts to active products in active categories
	Storefront bool
	Featured   *bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID loads the product with its recipe
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	// Save persists the product; the recipe is replaced when replaceRecipe is true
	Save(ctx context.Context, product *Product, replaceRecipe bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}
