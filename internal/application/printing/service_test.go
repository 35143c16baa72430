package printing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	apporder "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/printing"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/production"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	infra "github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOrderReader struct {
	mock.Mock
}

func (m *MockOrderReader) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type stubUsers map[uuid.UUID]*identity.User

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

type stubSettings map[string]string

func (s stubSettings) String(_ context.Context, key string) string { return s[key] }

type stubProduction struct {
	plan  *production.PlanResponse
	queue []apporder.OrderResponse
}

func (s stubProduction) Plan(context.Context, time.Time) (*production.PlanResponse, error) {
	return s.plan, nil
}

func (s stubProduction) Queue(context.Context, time.Time) ([]apporder.OrderResponse, error) {
	return s.queue, nil
}

// capturingRenderer returns a fixed PDF and remembers the last request
type capturingRenderer struct {
	last *infra.RenderRequest
	err  error
}

func (r *capturingRenderer) Render(_ context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	r.last = req
	if r.err != nil {
		return nil, r.err
	}
	return &infra.RenderResult{PDFData: []byte("%PDF-1.4 fake"), PageCount: 1}, nil
}

func (r *capturingRenderer) Close() error { return nil }

func newSale(t *testing.T, sellerID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.Sell(order.SellInput{
		Number:        "PN-20260301-0003",
		SellerID:      sellerID,
		CustomerName:  "mostrador",
		PaymentMethod: order.PaymentCash,
		Discount:      decimal.NewFromInt(1),
		Lines: []order.LineInput{{
			ProductID:   uuid.New(),
			ProductName: "marraqueta",
			UnitPrice:   decimal.RequireFromString("0.50"),
			Quantity:    decimal.NewFromInt(12),
		}},
	})
	require.NoError(t, err)
	return o
}

func TestService_Receipt(t *testing.T) {
	ctx := context.Background()
	seller, err := identity.NewUser("lucia flores", "lucia@panificadora.bo", "", "caja12345", identity.RoleVendor)
	require.NoError(t, err)
	sale := newSale(t, seller.ID)

	orders := new(MockOrderReader)
	orders.On("FindByID", ctx, sale.ID).Return(sale, nil)
	renderer := &capturingRenderer{}
	svc := printing.NewService(orders, stubUsers{seller.ID: seller}, stubProduction{},
		stubSettings{settings.KeyStoreName: "Panificadora Nancy", settings.KeyStoreWhatsApp: "+59171234567"},
		infra.NewTemplateEngine(time.UTC), renderer, zap.NewNop())

	doc, err := svc.Receipt(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "recibo-PN-20260301-0003.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.NotEmpty(t, doc.Data)

	require.NotNil(t, renderer.last)
	assert.Equal(t, infra.PaperReceipt, renderer.last.PaperSize)
	assert.Contains(t, renderer.last.HTML, "Lucia Flores")
	assert.Contains(t, renderer.last.HTML, "+59171234567")
	assert.Contains(t, renderer.last.HTML, "Marraqueta")
	assert.Contains(t, renderer.last.HTML, "Bs 5.00", "12 x 0.50 minus 1 discount")
	orders.AssertExpectations(t)
}

func TestService_Receipt_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown order", func(t *testing.T) {
		orders := new(MockOrderReader)
		id := uuid.New()
		orders.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)
		svc := printing.NewService(orders, nil, stubProduction{}, stubSettings{},
			infra.NewTemplateEngine(nil), &capturingRenderer{}, nil)

		_, err := svc.Receipt(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("renderer failure", func(t *testing.T) {
		sale := newSale(t, uuid.New())
		orders := new(MockOrderReader)
		orders.On("FindByID", ctx, sale.ID).Return(sale, nil)
		svc := printing.NewService(orders, stubUsers{}, stubProduction{}, stubSettings{},
			infra.NewTemplateEngine(nil), infra.DisabledRenderer{}, nil)

		_, err := svc.Receipt(ctx, sale.ID)
		var re *infra.RenderError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, infra.ErrCodeDisabled, re.Code)
	})
}

func TestService_ProductionSheet(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	due := day.Add(9 * time.Hour)
	source := stubProduction{
		plan: &production.PlanResponse{Day: "2026-03-02", Lines: []production.PlanLine{{
			ProductName: "Torta Tres Leches",
			Ordered:     decimal.NewFromInt(3),
			Orders:      2,
			InStock:     decimal.Zero,
			ToBake:      decimal.NewFromInt(3),
		}}},
		queue: []apporder.OrderResponse{{
			Number:       "PN-20260301-0009",
			CustomerName: "rosa quispe",
			ScheduledFor: &due,
			Status:       order.StatusConfirmed,
			Notes:        "Feliz cumple Ana",
			Items: []apporder.OrderItemResponse{
				{ProductName: "Torta Tres Leches", Quantity: decimal.NewFromInt(2)},
			},
		}},
	}
	renderer := &capturingRenderer{}
	svc := printing.NewService(new(MockOrderReader), nil, source, stubSettings{},
		infra.NewTemplateEngine(time.UTC), renderer, nil)

	doc, err := svc.ProductionSheet(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "produccion-2026-03-02.pdf", doc.Filename)
	assert.Equal(t, infra.PaperA4, renderer.last.PaperSize)

	html := renderer.last.HTML
	assert.Contains(t, html, "Panificadora Nancy")
	assert.Contains(t, html, "2 x Torta Tres Leches")
	assert.Contains(t, html, "Feliz cumple Ana")
	assert.Contains(t, html, "09:00")
	assert.Contains(t, html, "Rosa Quispe")
}
