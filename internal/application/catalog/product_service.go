package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockCreator opens the stock record of a new product
type StockCreator interface {
	CreateStockItem(ctx context.Context, productID uuid.UUID, minQuantity decimal.Decimal) error
}

// IngredientLookup checks recipe ingredients
type IngredientLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Ingredient, error)
}

// ProductService handles product-related business operations
type ProductService struct {
	txScope      shared.TransactionScope
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	stock        StockCreator
	ingredients  IngredientLookup
	events       shared.OutboxEventSaver
	images       ImageStorage
	defaultMin   decimal.Decimal
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	txScope shared.TransactionScope,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	stock StockCreator,
	ingredients IngredientLookup,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		txScope:      txScope,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		stock:        stock,
		ingredients:  ingredients,
		logger:       logger,
	}
}

// SetEventSaver sets where domain events are written
func (s *ProductService) SetEventSaver(events shared.OutboxEventSaver) {
	s.events = events
}

// SetImageStorage sets the object storage used for product photos
func (s *ProductService) SetImageStorage(images ImageStorage) {
	s.images = images
}

// SetDefaultMinQuantity sets the stock minimum given to new products
func (s *ProductService) SetDefaultMinQuantity(q decimal.Decimal) {
	s.defaultMin = q
}

// Create creates a product and its empty stock record in one transaction
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.CategoryID, strings.TrimSpace(req.Name), req.Unit, req.Price)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.Update(req.CategoryID, product.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.MadeToOrder {
		if err := product.SetProduction(true, req.LeadTimeHours); err != nil {
			return nil, err
		}
	}
	if req.IsFeatured {
		product.SetFeatured(true)
	}
	minQty := s.defaultMin
	if req.MinQuantity != nil {
		minQty = *req.MinQuantity
	}

	err = s.txScope.Execute(ctx, func(ctx context.Context) error {
		if err := s.ensureSlugFree(ctx, product.Slug, uuid.Nil); err != nil {
			return err
		}
		if err := s.productRepo.Save(ctx, product, false); err != nil {
			return err
		}
		if err := s.stock.CreateStockItem(ctx, product.ID, minQty); err != nil {
			return err
		}
		return s.flushEvents(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
		zap.String("price", product.Price.String()))
	resp := s.toResponse(product)
	return &resp, nil
}

// Update changes the fields present in req
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.productRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		categoryID, name, description := product.CategoryID, product.Name, product.Description
		if req.CategoryID != nil && *req.CategoryID != categoryID {
			if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
				return err
			}
			categoryID = *req.CategoryID
		}
		if req.Name != nil {
			name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(categoryID, name, description); err != nil {
			return err
		}
		if err := s.ensureSlugFree(ctx, product.Slug, product.ID); err != nil {
			return err
		}
		if req.Price != nil {
			if err := product.SetPrice(*req.Price); err != nil {
				return err
			}
		}
		if req.MadeToOrder != nil || req.LeadTimeHours != nil {
			madeToOrder, lead := product.MadeToOrder, product.LeadTimeHours
			if req.MadeToOrder != nil {
				madeToOrder = *req.MadeToOrder
			}
			if req.LeadTimeHours != nil {
				lead = *req.LeadTimeHours
			}
			if err := product.SetProduction(madeToOrder, lead); err != nil {
				return err
			}
		}
		if req.IsFeatured != nil {
			product.SetFeatured(*req.IsFeatured)
		}

		if err := s.productRepo.Save(ctx, product, false); err != nil {
			return err
		}
		return s.flushEvents(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(product)
	return &resp, nil
}

// Activate makes a product purchasable again
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.change(ctx, id, (*catalog.Product).Activate)
}

// Deactivate hides a product from the storefront and POS
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.change(ctx, id, (*catalog.Product).Deactivate)
}

// Delete removes an inactive product. Products that were ever sold keep
// their rows; the database rejects the delete and they stay deactivated.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if product.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Deactivate the product before deleting it")
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	if product.ImageKey != "" && s.images != nil {
		if err := s.images.DeleteObject(ctx, product.ImageKey); err != nil {
			s.logger.Warn("Failed to delete product image", zap.String("key", product.ImageKey), zap.Error(err))
		}
	}
	return nil
}

// SetRecipe replaces the ingredients consumed per unit produced
func (s *ProductService) SetRecipe(ctx context.Context, id uuid.UUID, req SetRecipeRequest) (*ProductResponse, error) {
	lines := make([]catalog.RecipeLine, 0, len(req.Lines))
	ids := make([]uuid.UUID, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, catalog.RecipeLine{IngredientID: l.IngredientID, QuantityPerUnit: l.QuantityPerUnit})
		ids = append(ids, l.IngredientID)
	}

	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.productRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := product.SetRecipe(lines); err != nil {
			return err
		}
		if len(ids) > 0 {
			found, err := s.ingredients.FindByIDs(ctx, ids)
			if err != nil {
				return err
			}
			if len(found) != len(ids) {
				return shared.NewDomainError("INVALID_RECIPE", "Recipe references an unknown ingredient")
			}
		}
		return s.productRepo.Save(ctx, product, true)
	})
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID, including inactive ones
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(product)
	return &resp, nil
}

// GetBySlug retrieves a product for the storefront. Inactive products and
// products of inactive categories are reported as not found.
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.ErrNotFound
	}
	category, err := s.categoryRepo.FindByID(ctx, product.CategoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, shared.ErrNotFound
	}
	resp := s.toResponse(product)
	resp.Recipe = nil
	return &resp, nil
}

// List lists products. The storefront flag hides inactive products and
// products of inactive categories.
func (s *ProductService) List(ctx context.Context, filter ProductListFilter, storefront bool) (shared.Paginated[ProductResponse], error) {
	f := catalog.ProductFilter{
		Filter:     shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		CategoryID: filter.CategoryID,
		Storefront: storefront,
		Featured:   filter.Featured,
	}
	products, total, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, s.toResponse(&products[i]))
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

func (s *ProductService) change(ctx context.Context, id uuid.UUID, fn func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product, false); err != nil {
		return nil, err
	}
	resp := s.toResponse(product)
	return &resp, nil
}

func (s *ProductService) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

func (s *ProductService) ensureSlugFree(ctx context.Context, slug string, excludeID uuid.UUID) error {
	exists, err := s.productRepo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "A product with this name already exists")
	}
	return nil
}

func (s *ProductService) flushEvents(ctx context.Context, product *catalog.Product) error {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return nil
	}
	return s.events.SaveEvents(ctx, events...)
}

func (s *ProductService) toResponse(p *catalog.Product) ProductResponse {
	if s.images == nil {
		return toProductResponse(p, nil)
	}
	return toProductResponse(p, s.images.PublicURL)
}
