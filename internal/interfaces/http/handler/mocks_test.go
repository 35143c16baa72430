package handler

import (
	"context"
	"time"

	identityapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/identity"
	inventoryapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	orderapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/order"
	printingapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/printing"
	settingsapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// result returns the first return value of a mocked call as T
func result[T any](args mock.Arguments) T {
	var zero T
	if v, ok := args.Get(0).(T); ok {
		return v
	}
	return zero
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) Quote(ctx context.Context, req orderapp.QuoteRequest) (*orderapp.QuoteResponse, error) {
	args := m.Called(ctx, req)
	return result[*orderapp.QuoteResponse](args), args.Error(1)
}

func (m *mockOrderService) Checkout(ctx context.Context, customerID *uuid.UUID, req orderapp.CheckoutRequest) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, customerID, req)
	return result[*orderapp.OrderResponse](args), args.Error(1)
}

func (m *mockOrderService) Sell(ctx context.Context, sellerID uuid.UUID, req orderapp.SellRequest) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, sellerID, req)
	return result[*orderapp.OrderResponse](args), args.Error(1)
}

func (m *mockOrderService) ChangeStatus(ctx context.Context, id uuid.UUID, req orderapp.ChangeStatusRequest, actorID *uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id, req, actorID)
	return result[*orderapp.OrderResponse](args), args.Error(1)
}

func (m *mockOrderService) Cancel(ctx context.Context, id uuid.UUID, req orderapp.CancelRequest, actorID *uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id, req, actorID)
	return result[*orderapp.OrderResponse](args), args.Error(1)
}

func (m *mockOrderService) CancelOwn(ctx context.Context, id, customerID uuid.UUID, req orderapp.CancelRequest) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id, customerID, req)
	return result[*orderapp.OrderResponse](args), args.Error(1)
}

func (m *mockOrderService) MarkPaid(ctx context.Context, id uuid.UUID, req orderapp.MarkPaidRequest) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	return result[*orderapp.OrderResponse](args), args.Error(1)
}

func (m *mockOrderService) AssignBaker(ctx context.Context, id uuid.UUID, req orderapp.AssignBakerRequest) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	return result[*orderapp.OrderResponse](args), args.Error(1)
}

func (m *mockOrderService) Get(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id)
	return result[*orderapp.OrderResponse](args), args.Error(1)
}

func (m *mockOrderService) GetOwn(ctx context.Context, id, customerID uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id, customerID)
	return result[*orderapp.OrderResponse](args), args.Error(1)
}

func (m *mockOrderService) GetByNumber(ctx context.Context, number string) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, number)
	return result[*orderapp.OrderResponse](args), args.Error(1)
}

func (m *mockOrderService) List(ctx context.Context, filter orderapp.OrderListFilter) (shared.Paginated[orderapp.OrderResponse], error) {
	args := m.Called(ctx, filter)
	return result[shared.Paginated[orderapp.OrderResponse]](args), args.Error(1)
}

func (m *mockOrderService) ListOwn(ctx context.Context, customerID uuid.UUID, filter orderapp.OrderListFilter) (shared.Paginated[orderapp.OrderResponse], error) {
	args := m.Called(ctx, customerID, filter)
	return result[shared.Paginated[orderapp.OrderResponse]](args), args.Error(1)
}

type mockInventoryService struct {
	mock.Mock
}

func (m *mockInventoryService) GetStock(ctx context.Context, productID uuid.UUID) (*inventoryapp.StockResponse, error) {
	args := m.Called(ctx, productID)
	return result[*inventoryapp.StockResponse](args), args.Error(1)
}

func (m *mockInventoryService) ListStock(ctx context.Context, filter inventoryapp.StockListFilter) (shared.Paginated[inventory.StockView], error) {
	args := m.Called(ctx, filter)
	return result[shared.Paginated[inventory.StockView]](args), args.Error(1)
}

func (m *mockInventoryService) Restock(ctx context.Context, req inventoryapp.RestockRequest, userID *uuid.UUID) (*inventoryapp.StockResponse, error) {
	args := m.Called(ctx, req, userID)
	return result[*inventoryapp.StockResponse](args), args.Error(1)
}

func (m *mockInventoryService) Adjust(ctx context.Context, req inventoryapp.AdjustRequest, userID *uuid.UUID) (*inventoryapp.StockResponse, error) {
	args := m.Called(ctx, req, userID)
	return result[*inventoryapp.StockResponse](args), args.Error(1)
}

func (m *mockInventoryService) RegisterWaste(ctx context.Context, req inventoryapp.WasteRequest, userID *uuid.UUID) (*inventoryapp.StockResponse, error) {
	args := m.Called(ctx, req, userID)
	return result[*inventoryapp.StockResponse](args), args.Error(1)
}

func (m *mockInventoryService) SetMinimum(ctx context.Context, productID uuid.UUID, req inventoryapp.SetMinimumRequest) (*inventoryapp.StockResponse, error) {
	args := m.Called(ctx, productID, req)
	return result[*inventoryapp.StockResponse](args), args.Error(1)
}

func (m *mockInventoryService) ListMovements(ctx context.Context, filter inventoryapp.MovementListFilter) (shared.Paginated[inventoryapp.MovementResponse], error) {
	args := m.Called(ctx, filter)
	return result[shared.Paginated[inventoryapp.MovementResponse]](args), args.Error(1)
}

func (m *mockInventoryService) LowStock(ctx context.Context) ([]inventoryapp.LowStockItem, error) {
	args := m.Called(ctx)
	return result[[]inventoryapp.LowStockItem](args), args.Error(1)
}

func (m *mockInventoryService) CreateIngredient(ctx context.Context, req inventoryapp.CreateIngredientRequest) (*inventoryapp.IngredientResponse, error) {
	args := m.Called(ctx, req)
	return result[*inventoryapp.IngredientResponse](args), args.Error(1)
}

func (m *mockInventoryService) GetIngredient(ctx context.Context, id uuid.UUID) (*inventoryapp.IngredientResponse, error) {
	args := m.Called(ctx, id)
	return result[*inventoryapp.IngredientResponse](args), args.Error(1)
}

func (m *mockInventoryService) UpdateIngredient(ctx context.Context, id uuid.UUID, req inventoryapp.UpdateIngredientRequest) (*inventoryapp.IngredientResponse, error) {
	args := m.Called(ctx, id, req)
	return result[*inventoryapp.IngredientResponse](args), args.Error(1)
}

func (m *mockInventoryService) ListIngredients(ctx context.Context, filter inventoryapp.IngredientListFilter) (shared.Paginated[inventoryapp.IngredientResponse], error) {
	args := m.Called(ctx, filter)
	return result[shared.Paginated[inventoryapp.IngredientResponse]](args), args.Error(1)
}

func (m *mockInventoryService) PurchaseIngredient(ctx context.Context, id uuid.UUID, req inventoryapp.IngredientStockRequest, userID *uuid.UUID) (*inventoryapp.IngredientResponse, error) {
	args := m.Called(ctx, id, req, userID)
	return result[*inventoryapp.IngredientResponse](args), args.Error(1)
}

func (m *mockInventoryService) AdjustIngredient(ctx context.Context, id uuid.UUID, req inventoryapp.IngredientStockRequest, userID *uuid.UUID) (*inventoryapp.IngredientResponse, error) {
	args := m.Called(ctx, id, req, userID)
	return result[*inventoryapp.IngredientResponse](args), args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.AuthResponse, error) {
	args := m.Called(ctx, req)
	return result[*identityapp.AuthResponse](args), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.AuthResponse, error) {
	args := m.Called(ctx, req)
	return result[*identityapp.AuthResponse](args), args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.AuthResponse, error) {
	args := m.Called(ctx, req)
	return result[*identityapp.AuthResponse](args), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, in identityapp.LogoutInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockAuthService) Me(ctx context.Context, userID uuid.UUID) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, userID)
	return result[*identityapp.UserResponse](args), args.Error(1)
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, userID, req)
	return result[*identityapp.UserResponse](args), args.Error(1)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req identityapp.ChangePasswordRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

type mockPrintService struct {
	mock.Mock
}

func (m *mockPrintService) Receipt(ctx context.Context, orderID uuid.UUID) (*printingapp.Document, error) {
	args := m.Called(ctx, orderID)
	return result[*printingapp.Document](args), args.Error(1)
}

func (m *mockPrintService) ProductionSheet(ctx context.Context, day time.Time) (*printingapp.Document, error) {
	args := m.Called(ctx, day)
	return result[*printingapp.Document](args), args.Error(1)
}

type mockSettingsService struct {
	mock.Mock
}

func (m *mockSettingsService) ListPublic(ctx context.Context) ([]settingsapp.SettingResponse, error) {
	args := m.Called(ctx)
	return result[[]settingsapp.SettingResponse](args), args.Error(1)
}

func (m *mockSettingsService) ListAll(ctx context.Context) ([]settingsapp.SettingResponse, error) {
	args := m.Called(ctx)
	return result[[]settingsapp.SettingResponse](args), args.Error(1)
}

func (m *mockSettingsService) Update(ctx context.Context, key string, req settingsapp.UpdateSettingRequest) (*settingsapp.SettingResponse, error) {
	args := m.Called(ctx, key, req)
	return result[*settingsapp.SettingResponse](args), args.Error(1)
}
