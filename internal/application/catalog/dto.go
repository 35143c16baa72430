package catalog

import (
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
	SortOrder   int    `json:"sort_order"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	CategoryID    uuid.UUID        `json:"category_id" binding:"required"`
	Name          string           `json:"name" binding:"required,min=1,max=150"`
	Description   string           `json:"description" binding:"max=2000"`
	Price         decimal.Decimal  `json:"price" binding:"required"`
	Unit          string           `json:"unit" binding:"required,oneof=unidad docena kg torta"`
	IsFeatured    bool             `json:"is_featured"`
	MadeToOrder   bool             `json:"made_to_order"`
	LeadTimeHours int              `json:"lead_time_hours" binding:"min=0,max=336"`
	MinQuantity   *decimal.Decimal `json:"min_quantity"`
}

// UpdateProductRequest represents a request to update a product. Nil fields
// are left unchanged.
type UpdateProductRequest struct {
	CategoryID    *uuid.UUID       `json:"category_id"`
	Name          *string          `json:"name" binding:"omitempty,min=1,max=150"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	Price         *decimal.Decimal `json:"price"`
	IsFeatured    *bool            `json:"is_featured"`
	MadeToOrder   *bool            `json:"made_to_order"`
	LeadTimeHours *int             `json:"lead_time_hours" binding:"omitempty,min=0,max=336"`
}

// RecipeLineRequest is one ingredient of a recipe
type RecipeLineRequest struct {
	IngredientID    uuid.UUID       `json:"ingredient_id" binding:"required"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit" binding:"required"`
}

// SetRecipeRequest replaces a product's recipe
type SetRecipeRequest struct {
	Lines []RecipeLineRequest `json:"lines" binding:"dive"`
}

// RecipeLineResponse is one ingredient of a recipe
type RecipeLineResponse struct {
	IngredientID    uuid.UUID       `json:"ingredient_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID            `json:"id"`
	CategoryID    uuid.UUID            `json:"category_id"`
	Name          string               `json:"name"`
	Slug          string               `json:"slug"`
	Description   string               `json:"description"`
	Price         decimal.Decimal      `json:"price"`
	Unit          string               `json:"unit"`
	ImageURL      string               `json:"image_url,omitempty"`
	IsActive      bool                 `json:"is_active"`
	IsFeatured    bool                 `json:"is_featured"`
	MadeToOrder   bool                 `json:"made_to_order"`
	LeadTimeHours int                  `json:"lead_time_hours"`
	Recipe        []RecipeLineResponse `json:"recipe,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Version       int                  `json:"version"`
}

// ProductListFilter represents filter options for product lists
type ProductListFilter struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"category_id"`
	Featured   *bool      `form:"featured"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUploadResponse carries the presigned URL and the key to attach afterwards
type ImageUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AttachImageRequest attaches an uploaded object to a product
type AttachImageRequest struct {
	Key string `json:"key" binding:"required,max=255"`
}

func toProductResponse(p *catalog.Product, imageURL func(string) string) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID,
		CategoryID:    p.CategoryID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		Unit:          p.Unit,
		IsActive:      p.IsActive,
		IsFeatured:    p.IsFeatured,
		MadeToOrder:   p.MadeToOrder,
		LeadTimeHours: p.LeadTimeHours,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
	if p.ImageKey != "" && imageURL != nil {
		resp.ImageURL = imageURL(p.ImageKey)
	}
	for _, l := range p.Recipe {
		resp.Recipe = append(resp.Recipe, RecipeLineResponse{IngredientID: l.IngredientID, QuantityPerUnit: l.QuantityPerUnit})
	}
	return resp
}
