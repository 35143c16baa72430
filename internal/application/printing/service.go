package printing

import (
	"context"
	"fmt"
	"strings"
	"time"

	apporder "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/production"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	infra "github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const contentTypePDF = "application/pdf"

// OrderReader loads an order with its items
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// UserReader resolves the seller shown on a receipt
type UserReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// ProductionSource provides the content of the production sheet
type ProductionSource interface {
	Plan(ctx context.Context, day time.Time) (*production.PlanResponse, error)
	Queue(ctx context.Context, day time.Time) ([]apporder.OrderResponse, error)
}

// SettingsReader reads the store details printed on documents
type SettingsReader interface {
	String(ctx context.Context, key string) string
}

// Service renders receipts and production sheets to PDF
type Service struct {
	orders     OrderReader
	users      UserReader
	production ProductionSource
	settings   SettingsReader
	engine     *infra.TemplateEngine
	renderer   infra.PDFRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a printing Service
func NewService(
	orders OrderReader,
	users UserReader,
	productionSource ProductionSource,
	settingsReader SettingsReader,
	engine *infra.TemplateEngine,
	renderer infra.PDFRenderer,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:     orders,
		users:      users,
		production: productionSource,
		settings:   settingsReader,
		engine:     engine,
		renderer:   renderer,
		logger:     logger,
		now:        time.Now,
	}
}

// ReceiptHTML renders the receipt of an order as HTML
func (s *Service) ReceiptHTML(ctx context.Context, orderID uuid.UUID) (string, *order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return "", nil, err
	}

	data := infra.ReceiptData{
		StoreName:     s.storeName(ctx),
		StorePhone:    s.settings.String(ctx, settings.KeyStoreWhatsApp),
		Number:        o.Number,
		IssuedAt:      o.CreatedAt,
		CustomerName:  o.CustomerName,
		PaymentMethod: string(o.PaymentMethod),
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Discount:      o.Discount,
		Total:         o.Total,
	}
	if o.DeliveredAt != nil {
		data.IssuedAt = *o.DeliveredAt
	}
	if o.SellerID != nil && s.users != nil {
		if seller, err := s.users.FindByID(ctx, *o.SellerID); err == nil {
			data.SellerName = seller.Name
		}
	}
	for _, it := range o.Items {
		data.Lines = append(data.Lines, infra.ReceiptLine{
			Name:     it.ProductName,
			Quantity: it.Quantity,
			Unit:     it.UnitPrice,
			Subtotal: it.Subtotal,
		})
	}

	html, err := s.engine.Receipt(data)
	if err != nil {
		return "", nil, err
	}
	return html, o, nil
}

// Receipt renders the receipt of an order on roll paper
func (s *Service) Receipt(ctx context.Context, orderID uuid.UUID) (*Document, error) {
	html, o, err := s.ReceiptHTML(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, &infra.RenderRequest{
		HTML:      html,
		Title:     o.Number,
		PaperSize: infra.PaperReceipt,
	}, "recibo-"+o.Number+".pdf")
}

// ProductionSheetHTML renders the production sheet of day as HTML
func (s *Service) ProductionSheetHTML(ctx context.Context, day time.Time) (string, error) {
	plan, err := s.production.Plan(ctx, day)
	if err != nil {
		return "", err
	}
	queue, err := s.production.Queue(ctx, day)
	if err != nil {
		return "", err
	}

	data := infra.ProductionSheetData{
		StoreName:   s.storeName(ctx),
		Day:         day,
		GeneratedAt: s.now(),
	}
	for _, l := range plan.Lines {
		data.Lines = append(data.Lines, infra.SheetLine{
			Product:  l.ProductName,
			Quantity: l.Ordered,
			Orders:   l.Orders,
			InStock:  l.InStock,
			ToBake:   l.ToBake,
		})
	}
	for _, o := range queue {
		data.Orders = append(data.Orders, infra.SheetOrder{
			Number:       o.Number,
			CustomerName: o.CustomerName,
			ScheduledFor: o.ScheduledFor,
			Status:       string(o.Status),
			Items:        summarizeItems(o.Items),
			Notes:        o.Notes,
		})
	}
	return s.engine.ProductionSheet(data)
}

// ProductionSheet renders the production sheet of day on A4
func (s *Service) ProductionSheet(ctx context.Context, day time.Time) (*Document, error) {
	html, err := s.ProductionSheetHTML(ctx, day)
	if err != nil {
		return nil, err
	}
	stamp := day.Format("2006-01-02")
	return s.render(ctx, &infra.RenderRequest{
		HTML:      html,
		Title:     "Produccion " + stamp,
		PaperSize: infra.PaperA4,
		Margins:   infra.Margins{Top: 10, Right: 10, Bottom: 10, Left: 10},
	}, "produccion-"+stamp+".pdf")
}

func (s *Service) render(ctx context.Context, req *infra.RenderRequest, filename string) (*Document, error) {
	result, err := s.renderer.Render(ctx, req)
	if err != nil {
		s.logger.Error("Failed to render document", zap.String("document", filename), zap.Error(err))
		return nil, fmt.Errorf("render %s: %w", filename, err)
	}
	return &Document{
		Filename:    filename,
		ContentType: contentTypePDF,
		Data:        result.PDFData,
		Pages:       result.PageCount,
	}, nil
}

func (s *Service) storeName(ctx context.Context) string {
	if name := s.settings.String(ctx, settings.KeyStoreName); name != "" {
		return name
	}
	return "Panificadora Nancy"
}

// summarizeItems formats items as "2 x Marraqueta, 1 x Torta"
func summarizeItems(items []apporder.OrderItemResponse) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		part := it.Quantity.String() + " x " + it.ProductName
		if it.Notes != "" {
			part += " (" + it.Notes + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
