package main

import (
	"context"
	"fmt"

	catalogapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/catalog"
	inventoryapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	orderapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/order"
	settingsapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/cache"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/event"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/logger"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/migration"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// stressApp holds the services a run needs, wired the same way as the server
// minus HTTP and background delivery
type stressApp struct {
	db         *persistence.Database
	categories *catalogapp.CategoryService
	products   *catalogapp.ProductService
	inventory  *inventoryapp.Service
	orders     *orderapp.Service

	orderRepo    order.Repository
	stockRepo    inventory.StockItemRepository
	movementRepo inventory.MovementRepository
	log          *zap.Logger
}

func newStressApp(cfg *config.DatabaseConfig, migrate bool, log *zap.Logger) (*stressApp, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel("warn"))
	db, err := persistence.NewDatabase(cfg, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := migrateSchema(db, log); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	txScope := persistence.NewGormTransactionScope(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	ingredientRepo := persistence.NewGormIngredientRepository(db.DB)
	stockRepo := persistence.NewGormStockItemRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	outbox := event.NewOutboxPublisher(serializer, event.NewGormOutboxRepository(db.DB))

	settings := settingsapp.NewService(persistence.NewGormSettingRepository(db.DB),
		cache.NewTieredSettingsCache(nil, cache.WithSettingsCacheLogger(log)), log)

	inv := inventoryapp.NewService(txScope, stockRepo, ingredientRepo, movementRepo, orderRepo, settings, log)
	inv.SetEventSaver(outbox)

	products := catalogapp.NewProductService(txScope, productRepo, categoryRepo, inv, ingredientRepo, log)
	products.SetEventSaver(outbox)

	orders := orderapp.NewService(txScope, orderRepo,
		catalogapp.NewProductSaleValidator(productRepo, categoryRepo), inv, settings, log)
	orders.SetEventSaver(outbox)

	return &stressApp{
		db:           db,
		categories:   catalogapp.NewCategoryService(categoryRepo, productRepo, log),
		products:     products,
		inventory:    inv,
		orders:       orders,
		orderRepo:    orderRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		log:          log,
	}, nil
}

func (a *stressApp) Close() error {
	return a.db.Close()
}

// fixture is the seeded product and PENDING order a run races on
type fixture struct {
	ProductID    uuid.UUID
	OrderID      uuid.UUID
	InitialStock decimal.Decimal
	Quantity     decimal.Decimal
}

// seed creates a product with stock and a PENDING online order for quantity
// units of it. Names carry the run id so repeated runs do not collide on slugs.
func (a *stressApp) seed(ctx context.Context, runID string, stock, quantity decimal.Decimal) (*fixture, error) {
	cat, err := a.categories.Create(ctx, catalogapp.CreateCategoryRequest{
		Name:        "Stress " + runID,
		Description: "stockstress fixture",
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	prod, err := a.products.Create(ctx, catalogapp.CreateProductRequest{
		CategoryID: cat.ID,
		Name:       "Marraqueta " + runID,
		Price:      decimal.RequireFromString("0.50"),
		Unit:       "unidad",
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	if _, err := a.inventory.Restock(ctx, inventoryapp.RestockRequest{
		ProductID: prod.ID,
		Quantity:  stock,
		Note:      "stockstress " + runID,
	}, nil); err != nil {
		return nil, fmt.Errorf("restock: %w", err)
	}
	o, err := a.orders.Checkout(ctx, nil, orderapp.CheckoutRequest{
		CustomerName:  "Stress " + runID,
		Fulfillment:   order.FulfillmentPickup,
		PaymentMethod: order.PaymentCash,
		Lines:         []orderapp.CartLine{{ProductID: prod.ID, Quantity: quantity}},
	})
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	return &fixture{ProductID: prod.ID, OrderID: o.ID, InitialStock: stock, Quantity: quantity}, nil
}

// migrateSchema mirrors the server: versioned migrations on postgres,
// AutoMigrate on sqlite
func migrateSchema(db *persistence.Database, log *zap.Logger) error {
	if db.Driver() == "sqlite" {
		return persistence.AutoMigrate(db.DB)
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		return err
	}
	return m.Up()
}
