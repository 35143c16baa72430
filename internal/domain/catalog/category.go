package catalog

import "github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"

// Category groups products on the storefront (breads, cakes, pastries...)
type Category struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	SortOrder   int    `gorm:"not null;default:0"`
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new active category
func NewCategory(name, description string, sortOrder int) (*Category, error) {
	if err := validateName(name, 100); err != nil {
		return nil, err
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name must contain letters or digits")
	}

	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Description:       description,
		SortOrder:         sortOrder,
		IsActive:          true,
	}, nil
}

// Update changes the category display data; the slug follows the name
func (c *Category) Update(name, description string, sortOrder int) error {
	if err := validateName(name, 100); err != nil {
		return err
	}
	c.Name = name
	c.Slug = Slugify(name)
	c.Description = description
	c.SortOrder = sortOrder
	c.IncrementVersion()
	return nil
}

// SetActive shows or hides the category and its products on the storefront
func (c *Category) SetActive(active bool) {
	if c.IsActive == active {
		return
	}
	c.IsActive = active
	c.IncrementVersion()
}

func validateName(name string, max int) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len([]rune(name)) > max {
		return shared.NewDomainError("INVALID_NAME", "Name is too long")
	}
	return nil
}
