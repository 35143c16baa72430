package catalog

import (
	"context"
	"fmt"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductSaleValidator loads the products of a cart or POS sale and checks
// that every one of them can be sold.
type ProductSaleValidator struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
}

// NewProductSaleValidator creates a new ProductSaleValidator
func NewProductSaleValidator(productRepo catalog.ProductRepository, categoryRepo catalog.CategoryRepository) *ProductSaleValidator {
	return &ProductSaleValidator{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// LoadForSale returns the requested products keyed by ID. A product that is
// missing, inactive or in an inactive category fails the whole call with
// PRODUCT_UNAVAILABLE naming it.
func (v *ProductSaleValidator) LoadForSale(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	out := make(map[uuid.UUID]*catalog.Product, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	products, err := v.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}

	activeCategory := make(map[uuid.UUID]bool)
	for _, id := range productIDs {
		p, ok := out[id]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", fmt.Sprintf("Product %s does not exist", id))
		}
		if !p.IsActive {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", fmt.Sprintf("%s is no longer available", p.Name))
		}
		active, seen := activeCategory[p.CategoryID]
		if !seen {
			c, err := v.categoryRepo.FindByID(ctx, p.CategoryID)
			if err != nil {
				return nil, err
			}
			active = c.IsActive
			activeCategory[p.CategoryID] = active
		}
		if !active {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", fmt.Sprintf("%s is no longer available", p.Name))
		}
	}
	return out, nil
}
