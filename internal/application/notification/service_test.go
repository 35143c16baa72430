package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	appinventory "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/notification"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/cache"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/event"
	infra "github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/notification"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeMailer struct {
	sent []infra.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg infra.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) Configured() bool { return true }

type sentText struct{ to, body string }

type fakeMessenger struct {
	sent []sentText
	err  error
}

func (m *fakeMessenger) SendText(_ context.Context, to, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentText{to, body})
	return nil
}

func (m *fakeMessenger) Configured() bool { return true }

type fakeSettings map[string]string

func (s fakeSettings) Bool(_ context.Context, key string) bool { return s[key] == "true" }
func (s fakeSettings) String(_ context.Context, key string) string {
	return s[key]
}

func allOn() fakeSettings {
	return fakeSettings{
		settings.KeyMailEnabled:     "true",
		settings.KeyWhatsAppEnabled: "true",
		settings.KeyStoreName:       "Panificadora Nancy",
		settings.KeyStoreEmail:      "tienda@panificadoranancy.bo",
		settings.KeyStoreWhatsApp:   "+59170000001",
	}
}

var laPaz = time.FixedZone("BOT", -4*3600)

func placedEvent() *order.OrderPlacedEvent {
	id := uuid.New()
	due := time.Date(2026, 3, 2, 13, 30, 0, 0, time.UTC)
	return &order.OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderPlaced, order.AggregateTypeOrder, id),
		OrderID:         id,
		Number:          "PN-20260301-0007",
		Channel:         order.ChannelOnline,
		Fulfillment:     order.FulfillmentDelivery,
		Address:         "Av. Arce 2020",
		ScheduledFor:    &due,
		Customer:        order.Contact{Name: "Rosa Quispe", Phone: "71234567", Email: "rosa@example.com"},
		Lines: []order.EventLine{
			{ProductName: "Torta Tres Leches", Quantity: decimal.NewFromInt(1), Subtotal: decimal.NewFromInt(120)},
		},
		Total:   decimal.NewFromInt(130),
		Payment: order.PaymentQR,
	}
}

func statusEvent(to order.Status, f order.Fulfillment) *order.OrderStatusChangedEvent {
	id := uuid.New()
	return &order.OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderStatusChanged, order.AggregateTypeOrder, id),
		OrderID:         id,
		Number:          "PN-20260301-0007",
		Channel:         order.ChannelOnline,
		Fulfillment:     f,
		FromStatus:      order.StatusInProduction,
		ToStatus:        to,
		Customer:        order.Contact{Name: "Rosa Quispe", Phone: "71234567", Email: "rosa@example.com"},
	}
}

func TestService_OrderPlaced(t *testing.T) {
	ctx := context.Background()
	mailer, wa := &fakeMailer{}, &fakeMessenger{}
	svc := notification.NewService(mailer, wa, allOn(), laPaz, zaptest.NewLogger(t))
	e := placedEvent()

	require.NoError(t, svc.MailOrderPlaced(ctx, e))
	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, []string{"rosa@example.com"}, msg.To)
	assert.Equal(t, "Panificadora Nancy: recibimos tu pedido PN-20260301-0007", msg.Subject)
	assert.Contains(t, msg.Text, "1 x Torta Tres Leches  Bs 120.00")
	assert.Contains(t, msg.Text, "Entrega programada: 02/03/2026 09:30")
	assert.Contains(t, msg.HTML, "<strong>Bs 130.00</strong>")

	require.NoError(t, svc.WhatsAppOrderPlaced(ctx, e))
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "+59170000001", wa.sent[0].to)
	assert.Contains(t, wa.sent[0].body, "Nuevo pedido PN-20260301-0007")
	assert.Contains(t, wa.sent[0].body, "Rosa Quispe (71234567)")
	assert.Contains(t, wa.sent[0].body, "Envio a: Av. Arce 2020")
	assert.Contains(t, wa.sent[0].body, "pago qr")
}

func TestService_OrderPlaced_Skips(t *testing.T) {
	ctx := context.Background()

	t.Run("channels switched off", func(t *testing.T) {
		mailer, wa := &fakeMailer{}, &fakeMessenger{}
		s := allOn()
		s[settings.KeyMailEnabled] = "false"
		s[settings.KeyWhatsAppEnabled] = "false"
		svc := notification.NewService(mailer, wa, s, laPaz, nil)

		require.NoError(t, svc.MailOrderPlaced(ctx, placedEvent()))
		require.NoError(t, svc.WhatsAppOrderPlaced(ctx, placedEvent()))
		assert.Empty(t, mailer.sent)
		assert.Empty(t, wa.sent)
	})

	t.Run("no customer email and pos sale", func(t *testing.T) {
		mailer, wa := &fakeMailer{}, &fakeMessenger{}
		svc := notification.NewService(mailer, wa, allOn(), laPaz, nil)

		e := placedEvent()
		e.Customer.Email = ""
		e.Channel = order.ChannelPOS
		require.NoError(t, svc.MailOrderPlaced(ctx, e))
		require.NoError(t, svc.WhatsAppOrderPlaced(ctx, e))
		assert.Empty(t, mailer.sent)
		assert.Empty(t, wa.sent)
	})

	t.Run("nil channels", func(t *testing.T) {
		svc := notification.NewService(nil, nil, allOn(), nil, nil)
		assert.NoError(t, svc.MailOrderPlaced(ctx, placedEvent()))
		assert.NoError(t, svc.WhatsAppOrderPlaced(ctx, placedEvent()))
	})
}

func TestService_StatusChanged(t *testing.T) {
	ctx := context.Background()

	t.Run("ready for pickup", func(t *testing.T) {
		mailer, wa := &fakeMailer{}, &fakeMessenger{}
		svc := notification.NewService(mailer, wa, allOn(), laPaz, nil)
		e := statusEvent(order.StatusReady, order.FulfillmentPickup)

		require.NoError(t, svc.MailStatusChanged(ctx, e))
		require.NoError(t, svc.WhatsAppOrderReady(ctx, e))
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "Panificadora Nancy: tu pedido PN-20260301-0007 esta listo", mailer.sent[0].Subject)
		assert.Contains(t, mailer.sent[0].Text, "Ya puedes pasar a recogerlo.")
		require.Len(t, wa.sent, 1)
		assert.Equal(t, "71234567", wa.sent[0].to)
		assert.Contains(t, wa.sent[0].body, "esta listo. Ya puedes pasar a recogerlo.")
	})

	t.Run("cancelled with reason", func(t *testing.T) {
		mailer, wa := &fakeMailer{}, &fakeMessenger{}
		svc := notification.NewService(mailer, wa, allOn(), laPaz, nil)
		e := statusEvent(order.StatusCancelled, order.FulfillmentDelivery)
		e.CancelReason = "pago no recibido"

		require.NoError(t, svc.MailStatusChanged(ctx, e))
		require.NoError(t, svc.WhatsAppOrderReady(ctx, e))
		require.Len(t, mailer.sent, 1)
		assert.Contains(t, mailer.sent[0].Text, "Motivo: pago no recibido")
		assert.Contains(t, mailer.sent[0].HTML, "Motivo: pago no recibido")
		assert.Empty(t, wa.sent, "only READY goes to WhatsApp")
	})

	t.Run("back to pending is not mailed", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := notification.NewService(mailer, nil, allOn(), laPaz, nil)
		require.NoError(t, svc.MailStatusChanged(ctx, statusEvent(order.StatusPending, order.FulfillmentPickup)))
		assert.Empty(t, mailer.sent)
	})

	t.Run("send failure is returned", func(t *testing.T) {
		boom := errors.New("smtp 451")
		svc := notification.NewService(&fakeMailer{err: boom}, nil, allOn(), laPaz, nil)
		assert.ErrorIs(t, svc.MailStatusChanged(ctx, statusEvent(order.StatusDelivered, order.FulfillmentPickup)), boom)
	})
}

func TestService_StockMail(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	svc := notification.NewService(mailer, nil, allOn(), laPaz, nil)

	require.NoError(t, svc.SendAlert(ctx, appinventory.StockAlert{
		Name: "Harina", Unit: "kg", Quantity: "0", MinQuantity: "5", AlertType: appinventory.AlertOutOfStock,
	}))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"tienda@panificadoranancy.bo"}, mailer.sent[0].To)
	assert.Equal(t, "Panificadora Nancy: Sin stock: Harina", mailer.sent[0].Subject)

	require.NoError(t, svc.SendLowStockDigest(ctx, nil))
	assert.Len(t, mailer.sent, 1, "empty digest sends nothing")

	require.NoError(t, svc.SendLowStockDigest(ctx, []appinventory.LowStockItem{
		{Name: "Marraqueta", Unit: "unidad", Quantity: decimal.NewFromInt(3), MinQuantity: decimal.NewFromInt(20)},
		{Name: "Azucar", Unit: "kg", Quantity: decimal.NewFromInt(1), MinQuantity: decimal.NewFromInt(2)},
	}))
	require.Len(t, mailer.sent, 2)
	assert.Contains(t, mailer.sent[1].Subject, "Resumen de stock bajo (2)")
	assert.Contains(t, mailer.sent[1].Text, "- Marraqueta: 3 unidad (minimo 20)")
}

func TestHandlers_ChannelsAreIndependent(t *testing.T) {
	ctx := context.Background()
	mailer, wa := &fakeMailer{}, &fakeMessenger{err: errors.New("whatsapp down")}
	svc := notification.NewService(mailer, wa, allOn(), laPaz, nil)
	logger := zaptest.NewLogger(t)
	store := cache.NewInMemoryIdempotencyStore(time.Minute)

	bus := event.NewInMemoryEventBus(logger)
	bus.Subscribe(event.NewIdempotentHandler(notification.NewMailHandler(svc), store, logger,
		event.WithHandlerName(notification.MailHandlerName)))
	bus.Subscribe(event.NewIdempotentHandler(notification.NewWhatsAppHandler(svc), store, logger,
		event.WithHandlerName(notification.WhatsAppHandlerName)))

	e := placedEvent()
	require.Error(t, bus.Publish(ctx, e), "whatsapp failure surfaces for a retry")
	assert.Len(t, mailer.sent, 1)

	wa.err = nil
	require.NoError(t, bus.Publish(ctx, e))
	assert.Len(t, mailer.sent, 1, "mail is not sent twice on redelivery")
	assert.Len(t, wa.sent, 1)
}

func TestHandlers_UnexpectedEvent(t *testing.T) {
	svc := notification.NewService(nil, nil, allOn(), nil, nil)
	other := &order.OrderPaidEvent{BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderPaid, order.AggregateTypeOrder, uuid.New())}
	assert.Error(t, notification.NewMailHandler(svc).Handle(context.Background(), other))
	assert.Error(t, notification.NewWhatsAppHandler(svc).Handle(context.Background(), other))
}
