package notification

import (
	"context"
	"fmt"
	"time"

	appinventory "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	infra "github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/notification"
	"go.uber.org/zap"
)

// SettingsReader reads channel switches and store contacts
type SettingsReader interface {
	Bool(ctx context.Context, key string) bool
	String(ctx context.Context, key string) string
}

// Mailer is the outgoing mail channel
type Mailer interface {
	Send(ctx context.Context, msg infra.Message) error
	Configured() bool
}

// Messenger is the outgoing WhatsApp channel
type Messenger interface {
	SendText(ctx context.Context, to, body string) error
	Configured() bool
}

// Service composes notifications and sends them through the enabled channels.
// A channel is used only when it is configured and switched on in settings.
// Send errors are returned so the outbox retries the delivery.
type Service struct {
	mailer    Mailer
	messenger Messenger
	settings  SettingsReader
	loc       *time.Location
	logger    *zap.Logger
}

// NewService creates a notification Service. mailer and messenger may be nil.
func NewService(mailer Mailer, messenger Messenger, settingsReader SettingsReader, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		mailer:    mailer,
		messenger: messenger,
		settings:  settingsReader,
		loc:       loc,
		logger:    logger,
	}
}

func (s *Service) mailOn(ctx context.Context) bool {
	return s.mailer != nil && s.mailer.Configured() && s.settings.Bool(ctx, settings.KeyMailEnabled)
}

func (s *Service) whatsAppOn(ctx context.Context) bool {
	return s.messenger != nil && s.messenger.Configured() && s.settings.Bool(ctx, settings.KeyWhatsAppEnabled)
}

func (s *Service) store(ctx context.Context) string {
	if name := s.settings.String(ctx, settings.KeyStoreName); name != "" {
		return name
	}
	return "Panificadora Nancy"
}

// MailOrderPlaced sends the order received mail to the customer
func (s *Service) MailOrderPlaced(ctx context.Context, e *order.OrderPlacedEvent) error {
	if e.Customer.Email == "" || !s.mailOn(ctx) {
		return nil
	}
	store := s.store(ctx)
	when := formatWhen(e.ScheduledFor, s.loc)
	html, err := renderMail("placed", map[string]any{
		"Store":    store,
		"Customer": e.Customer.Name,
		"Number":   e.Number,
		"Lines":    e.Lines,
		"Total":    e.Total,
		"When":     when,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, infra.Message{
		To:      []string{e.Customer.Email},
		Subject: fmt.Sprintf("%s: recibimos tu pedido %s", store, e.Number),
		Text:    placedText(store, e, when),
		HTML:    html,
	})
}

// MailStatusChanged tells the customer about a status change
func (s *Service) MailStatusChanged(ctx context.Context, e *order.OrderStatusChangedEvent) error {
	if e.Customer.Email == "" || !customerStatuses[e.ToStatus] || !s.mailOn(ctx) {
		return nil
	}
	store := s.store(ctx)
	status := statusText[e.ToStatus]
	hint := statusHint(e.ToStatus, e.Fulfillment)
	html, err := renderMail("status", map[string]any{
		"Store":    store,
		"Customer": e.Customer.Name,
		"Number":   e.Number,
		"Status":   status,
		"Reason":   e.CancelReason,
		"Hint":     hint,
	})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Hola %s, tu pedido %s esta %s.", e.Customer.Name, e.Number, status)
	if e.CancelReason != "" {
		text += "\nMotivo: " + e.CancelReason
	}
	if hint != "" {
		text += "\n" + hint
	}
	return s.send(ctx, infra.Message{
		To:      []string{e.Customer.Email},
		Subject: fmt.Sprintf("%s: tu pedido %s esta %s", store, e.Number, status),
		Text:    text,
		HTML:    html,
	})
}

// WhatsAppOrderPlaced alerts the shop about a new online order
func (s *Service) WhatsAppOrderPlaced(ctx context.Context, e *order.OrderPlacedEvent) error {
	if e.Channel != order.ChannelOnline || !s.whatsAppOn(ctx) {
		return nil
	}
	number := s.settings.String(ctx, settings.KeyStoreWhatsApp)
	if number == "" {
		s.logger.Debug("Store WhatsApp number not set, skipping new order alert")
		return nil
	}
	return s.messenger.SendText(ctx, number, storeAlertText(e, formatWhen(e.ScheduledFor, s.loc)))
}

// WhatsAppOrderReady tells the customer the order is ready
func (s *Service) WhatsAppOrderReady(ctx context.Context, e *order.OrderStatusChangedEvent) error {
	if e.ToStatus != order.StatusReady || e.Customer.Phone == "" || !s.whatsAppOn(ctx) {
		return nil
	}
	return s.messenger.SendText(ctx, e.Customer.Phone, readyText(s.store(ctx), e))
}

// SendAlert mails a single stock alert to the store address
func (s *Service) SendAlert(ctx context.Context, alert appinventory.StockAlert) error {
	title := "Stock bajo: " + alert.Name
	if alert.AlertType == appinventory.AlertOutOfStock {
		title = "Sin stock: " + alert.Name
	}
	return s.mailStock(ctx, title, []stockRow{{
		Name:        alert.Name,
		Unit:        alert.Unit,
		Quantity:    alert.Quantity,
		MinQuantity: alert.MinQuantity,
	}})
}

// SendLowStockDigest mails the daily list of items under their minimum.
// Nothing is sent for an empty list.
func (s *Service) SendLowStockDigest(ctx context.Context, items []appinventory.LowStockItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]stockRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, stockRow{
			Name:        it.Name,
			Unit:        it.Unit,
			Quantity:    it.Quantity.String(),
			MinQuantity: it.MinQuantity.String(),
		})
	}
	return s.mailStock(ctx, fmt.Sprintf("Resumen de stock bajo (%d)", len(items)), rows)
}

type stockRow struct {
	Name        string
	Unit        string
	Quantity    string
	MinQuantity string
}

func (s *Service) mailStock(ctx context.Context, title string, rows []stockRow) error {
	if !s.mailOn(ctx) {
		return nil
	}
	to := s.settings.String(ctx, settings.KeyStoreEmail)
	if to == "" {
		s.logger.Debug("Store email not set, skipping stock mail")
		return nil
	}
	html, err := renderMail("stock", map[string]any{"Title": title, "Items": rows})
	if err != nil {
		return err
	}
	text := title + "\n"
	for _, r := range rows {
		text += fmt.Sprintf("- %s: %s %s (minimo %s)\n", r.Name, r.Quantity, r.Unit, r.MinQuantity)
	}
	return s.send(ctx, infra.Message{
		To:      []string{to},
		Subject: s.store(ctx) + ": " + title,
		Text:    text,
		HTML:    html,
	})
}

func (s *Service) send(ctx context.Context, msg infra.Message) error {
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("Mail delivery failed", zap.Strings("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		return err
	}
	return nil
}

var _ appinventory.StockAlertNotifier = (*Service)(nil)
