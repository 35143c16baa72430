package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newTestDB opens a migrated in-memory sqlite database
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(database.DB))
	t.Cleanup(func() { _ = database.Close() })

	return database.DB
}

// newMockDB wraps sqlmock in the postgres dialector to assert generated SQL
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// seedProduct stores a category, an active product and its stock row
func seedProduct(t *testing.T, db *gorm.DB, name string, stock float64) *catalog.Product {
	t.Helper()
	ctx := context.Background()

	category, err := catalog.NewCategory("Panes "+uuid.NewString()[:8], "", 0)
	require.NoError(t, err)
	require.NoError(t, db.WithContext(ctx).Create(category).Error)

	product, err := catalog.NewProduct(category.ID, name, "unidad", decimal.NewFromFloat(1.5))
	require.NoError(t, err)
	require.NoError(t, db.WithContext(ctx).Omit("Recipe").Create(product).Error)

	item, err := inventory.NewStockItem(product.ID)
	require.NoError(t, err)
	item.Quantity = decimal.NewFromFloat(stock)
	item.MinQuantity = decimal.NewFromInt(5)
	require.NoError(t, db.WithContext(ctx).Create(item).Error)

	return product
}
