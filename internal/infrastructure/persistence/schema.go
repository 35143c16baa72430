package persistence

import (
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/production"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"gorm.io/gorm"
)

// orderSequence holds the last order number issued per day
type orderSequence struct {
	Day  string `gorm:"type:varchar(8);primaryKey"`
	Last int    `gorm:"not null"`
}

func (orderSequence) TableName() string {
	return "order_sequences"
}

// Models lists every persisted type in dependency order
func Models() []any {
	return []any{
		&identity.User{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.RecipeLine{},
		&inventory.StockItem{},
		&inventory.Ingredient{},
		&inventory.Movement{},
		&order.Order{},
		&order.Item{},
		&orderSequence{},
		&production.Batch{},
		&settings.Setting{},
		&shared.OutboxEntry{},
	}
}

// AutoMigrate creates the schema from the GORM models. Postgres deployments
// use the SQL migrations; this is for sqlite development databases and tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
