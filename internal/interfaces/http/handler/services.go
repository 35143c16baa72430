package handler

import (
	"context"
	"time"

	catalogapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/event"
	identityapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/identity"
	inventoryapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	orderapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/order"
	printingapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/printing"
	productionapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/production"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/report"
	settingsapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// The interfaces below are the slices of the application services each
// handler calls. The concrete services satisfy them.

// AuthService is used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.AuthResponse, error)
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.AuthResponse, error)
	Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.AuthResponse, error)
	Logout(ctx context.Context, in identityapp.LogoutInput) error
	Me(ctx context.Context, userID uuid.UUID) (*identityapp.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.UserResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req identityapp.ChangePasswordRequest) error
}

// EmployeeService is used by EmployeeHandler
type EmployeeService interface {
	Create(ctx context.Context, req identityapp.CreateEmployeeRequest) (*identityapp.UserResponse, error)
	Update(ctx context.Context, id, actorID uuid.UUID, req identityapp.UpdateEmployeeRequest) (*identityapp.UserResponse, error)
	Deactivate(ctx context.Context, id, actorID uuid.UUID) (*identityapp.UserResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*identityapp.UserResponse, error)
	List(ctx context.Context, filter identityapp.EmployeeListFilter) (shared.Paginated[identityapp.UserResponse], error)
	ListByRole(ctx context.Context, role identity.Role) ([]identityapp.UserResponse, error)
}

// CategoryService is used by CategoryHandler
type CategoryService interface {
	Create(ctx context.Context, req catalogapp.CreateCategoryRequest) (*catalogapp.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateCategoryRequest) (*catalogapp.CategoryResponse, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*catalogapp.CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.CategoryResponse, error)
	GetBySlug(ctx context.Context, slug string) (*catalogapp.CategoryResponse, error)
	List(ctx context.Context, activeOnly bool) ([]catalogapp.CategoryResponse, error)
}

// ProductService is used by ProductHandler
type ProductService interface {
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Activate(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetRecipe(ctx context.Context, id uuid.UUID, req catalogapp.SetRecipeRequest) (*catalogapp.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	GetBySlug(ctx context.Context, slug string) (*catalogapp.ProductResponse, error)
	List(ctx context.Context, filter catalogapp.ProductListFilter, storefront bool) (shared.Paginated[catalogapp.ProductResponse], error)
	RequestImageUpload(ctx context.Context, productID uuid.UUID, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error)
	AttachImage(ctx context.Context, productID uuid.UUID, req catalogapp.AttachImageRequest) (*catalogapp.ProductResponse, error)
	RemoveImage(ctx context.Context, productID uuid.UUID) (*catalogapp.ProductResponse, error)
}

// OrderService is used by OrderHandler and POSHandler
type OrderService interface {
	Quote(ctx context.Context, req orderapp.QuoteRequest) (*orderapp.QuoteResponse, error)
	Checkout(ctx context.Context, customerID *uuid.UUID, req orderapp.CheckoutRequest) (*orderapp.OrderResponse, error)
	Sell(ctx context.Context, sellerID uuid.UUID, req orderapp.SellRequest) (*orderapp.OrderResponse, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, req orderapp.ChangeStatusRequest, actorID *uuid.UUID) (*orderapp.OrderResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req orderapp.CancelRequest, actorID *uuid.UUID) (*orderapp.OrderResponse, error)
	CancelOwn(ctx context.Context, id, customerID uuid.UUID, req orderapp.CancelRequest) (*orderapp.OrderResponse, error)
	MarkPaid(ctx context.Context, id uuid.UUID, req orderapp.MarkPaidRequest) (*orderapp.OrderResponse, error)
	AssignBaker(ctx context.Context, id uuid.UUID, req orderapp.AssignBakerRequest) (*orderapp.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error)
	GetOwn(ctx context.Context, id, customerID uuid.UUID) (*orderapp.OrderResponse, error)
	GetByNumber(ctx context.Context, number string) (*orderapp.OrderResponse, error)
	List(ctx context.Context, filter orderapp.OrderListFilter) (shared.Paginated[orderapp.OrderResponse], error)
	ListOwn(ctx context.Context, customerID uuid.UUID, filter orderapp.OrderListFilter) (shared.Paginated[orderapp.OrderResponse], error)
}

// InventoryService is used by InventoryHandler
type InventoryService interface {
	GetStock(ctx context.Context, productID uuid.UUID) (*inventoryapp.StockResponse, error)
	ListStock(ctx context.Context, filter inventoryapp.StockListFilter) (shared.Paginated[inventory.StockView], error)
	Restock(ctx context.Context, req inventoryapp.RestockRequest, userID *uuid.UUID) (*inventoryapp.StockResponse, error)
	Adjust(ctx context.Context, req inventoryapp.AdjustRequest, userID *uuid.UUID) (*inventoryapp.StockResponse, error)
	RegisterWaste(ctx context.Context, req inventoryapp.WasteRequest, userID *uuid.UUID) (*inventoryapp.StockResponse, error)
	SetMinimum(ctx context.Context, productID uuid.UUID, req inventoryapp.SetMinimumRequest) (*inventoryapp.StockResponse, error)
	ListMovements(ctx context.Context, filter inventoryapp.MovementListFilter) (shared.Paginated[inventoryapp.MovementResponse], error)
	LowStock(ctx context.Context) ([]inventoryapp.LowStockItem, error)
	CreateIngredient(ctx context.Context, req inventoryapp.CreateIngredientRequest) (*inventoryapp.IngredientResponse, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*inventoryapp.IngredientResponse, error)
	UpdateIngredient(ctx context.Context, id uuid.UUID, req inventoryapp.UpdateIngredientRequest) (*inventoryapp.IngredientResponse, error)
	ListIngredients(ctx context.Context, filter inventoryapp.IngredientListFilter) (shared.Paginated[inventoryapp.IngredientResponse], error)
	PurchaseIngredient(ctx context.Context, id uuid.UUID, req inventoryapp.IngredientStockRequest, userID *uuid.UUID) (*inventoryapp.IngredientResponse, error)
	AdjustIngredient(ctx context.Context, id uuid.UUID, req inventoryapp.IngredientStockRequest, userID *uuid.UUID) (*inventoryapp.IngredientResponse, error)
}

// ProductionService is used by ProductionHandler
type ProductionService interface {
	Queue(ctx context.Context, day time.Time) ([]orderapp.OrderResponse, error)
	Plan(ctx context.Context, day time.Time) (*productionapp.PlanResponse, error)
	RecordBatch(ctx context.Context, bakerID uuid.UUID, req productionapp.RecordBatchRequest) (*productionapp.BatchResponse, error)
	ListBatches(ctx context.Context, day time.Time) ([]productionapp.BatchResponse, error)
}

// PrintService renders PDFs
type PrintService interface {
	Receipt(ctx context.Context, orderID uuid.UUID) (*printingapp.Document, error)
	ProductionSheet(ctx context.Context, day time.Time) (*printingapp.Document, error)
}

// SettingsService is used by SettingsHandler
type SettingsService interface {
	ListPublic(ctx context.Context) ([]settingsapp.SettingResponse, error)
	ListAll(ctx context.Context) ([]settingsapp.SettingResponse, error)
	Update(ctx context.Context, key string, req settingsapp.UpdateSettingRequest) (*settingsapp.SettingResponse, error)
}

// DashboardService is used by DashboardHandler
type DashboardService interface {
	Summary(ctx context.Context, filter report.DashboardFilter) (*report.DashboardResponse, error)
}

// OutboxService is used by OutboxHandler
type OutboxService interface {
	ListDead(ctx context.Context, filter event.OutboxFilter) (shared.Paginated[event.OutboxEntryResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*event.OutboxEntryResponse, error)
	RetryDead(ctx context.Context, id uuid.UUID) (*event.OutboxEntryResponse, error)
	RetryAllDead(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*event.OutboxStats, error)
}

var (
	_ AuthService       = (*identityapp.AuthService)(nil)
	_ EmployeeService   = (*identityapp.EmployeeService)(nil)
	_ CategoryService   = (*catalogapp.CategoryService)(nil)
	_ ProductService    = (*catalogapp.ProductService)(nil)
	_ OrderService      = (*orderapp.Service)(nil)
	_ InventoryService  = (*inventoryapp.Service)(nil)
	_ ProductionService = (*productionapp.Service)(nil)
	_ PrintService      = (*printingapp.Service)(nil)
	_ SettingsService   = (*settingsapp.Service)(nil)
	_ DashboardService  = (*report.DashboardService)(nil)
	_ OutboxService     = (*event.OutboxService)(nil)
)
