package catalog

import (
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Units a product can be sold in
const (
	UnitPiece = "unidad"
	UnitDozen = "docena"
	UnitKilo  = "kg"
	UnitCake  = "torta"
)

var validUnits = map[string]bool{UnitPiece: true, UnitDozen: true, UnitKilo: true, UnitCake: true}

// Product is a sellable bakery item and the aggregate root of the catalog
type Product struct {
	shared.BaseAggregateRoot
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"type:varchar(150);not null"`
	Slug          string          `gorm:"type:varchar(170);not null;uniqueIndex"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Unit          string          `gorm:"type:varchar(20);not null"`
	ImageKey      string          `gorm:"type:varchar(255)"`
	IsActive      bool            `gorm:"not null;default:true"`
	IsFeatured    bool            `gorm:"not null;default:false"`
	MadeToOrder   bool            `gorm:"not null;default:false"`
	LeadTimeHours int             `gorm:"not null;default:0"`
	Recipe        []RecipeLine    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// RecipeLine is the amount of one ingredient consumed per unit produced
type RecipeLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID    uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(12,4);not null"`
}

// TableName returns the table name for GORM
func (RecipeLine) TableName() string {
	return "product_recipe_lines"
}

// NewProduct creates a new active product
func NewProduct(categoryID uuid.UUID, name, unit string, price decimal.Decimal) (*Product, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if err := validateName(name, 150); err != nil {
		return nil, err
	}
	if !validUnits[unit] {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit must be one of unidad, docena, kg, torta")
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name must contain letters or digits")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CategoryID:        categoryID,
		Name:              name,
		Slug:              slug,
		Price:             price,
		Unit:              unit,
		IsActive:          true,
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update changes descriptive data
func (p *Product) Update(categoryID uuid.UUID, name, description string) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if err := validateName(name, 150); err != nil {
		return err
	}
	p.CategoryID = categoryID
	p.Name = name
	p.Slug = Slugify(name)
	p.Description = description
	p.touch()
	return nil
}

// SetPrice changes the selling price. Existing orders keep their snapshot.
func (p *Product) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if p.Price.Equal(price) {
		return nil
	}
	old := p.Price
	p.Price = price
	p.touch()
	p.AddDomainEvent(NewProductPriceChangedEvent(p, old))
	return nil
}

// SetProduction configures made-to-order behaviour
func (p *Product) SetProduction(madeToOrder bool, leadTimeHours int) error {
	if leadTimeHours < 0 || leadTimeHours > 24*14 {
		return shared.NewDomainError("INVALID_LEAD_TIME", "Lead time must be between 0 and 336 hours")
	}
	if !madeToOrder {
		leadTimeHours = 0
	}
	p.MadeToOrder = madeToOrder
	p.LeadTimeHours = leadTimeHours
	p.touch()
	return nil
}

// SetFeatured marks the product for the storefront home page
func (p *Product) SetFeatured(featured bool) {
	p.IsFeatured = featured
	p.touch()
}

// SetImage attaches an uploaded object key
func (p *Product) SetImage(key string) {
	p.ImageKey = key
	p.touch()
}

// Activate makes the product purchasable again
func (p *Product) Activate() error {
	if p.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.IsActive = true
	p.touch()
	return nil
}

// Deactivate hides the product from the storefront and POS
func (p *Product) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.IsActive = false
	p.touch()
	return nil
}

// SetRecipe replaces the recipe. An ingredient may appear only once.
func (p *Product) SetRecipe(lines []RecipeLine) error {
	seen := make(map[uuid.UUID]bool, len(lines))
	recipe := make([]RecipeLine, 0, len(lines))
	for _, l := range lines {
		if l.IngredientID == uuid.Nil {
			return shared.NewDomainError("INVALID_RECIPE", "Ingredient is required")
		}
		if !l.QuantityPerUnit.IsPositive() {
			return shared.NewDomainError("INVALID_RECIPE", "Ingredient quantity must be positive")
		}
		if seen[l.IngredientID] {
			return shared.NewDomainError("INVALID_RECIPE", "Ingredient listed more than once")
		}
		seen[l.IngredientID] = true
		recipe = append(recipe, RecipeLine{
			ID:              uuid.New(),
			ProductID:       p.ID,
			IngredientID:    l.IngredientID,
			QuantityPerUnit: l.QuantityPerUnit,
		})
	}
	p.Recipe = recipe
	p.touch()
	return nil
}

// EarliestReadyAt returns the earliest time an order placed at now can be picked up
func (p *Product) EarliestReadyAt(now time.Time) time.Time {
	return now.Add(time.Duration(p.LeadTimeHours) * time.Hour)
}

func (p *Product) touch() {
	p.IncrementVersion()
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}
	return nil
}
