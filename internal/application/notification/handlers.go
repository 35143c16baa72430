package notification

import (
	"context"
	"fmt"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
)

// Handler names used as idempotency key prefixes. Each channel has its own
// handler so a WhatsApp failure does not resend an already delivered mail.
const (
	MailHandlerName     = "notification.mail"
	WhatsAppHandlerName = "notification.whatsapp"
)

// MailHandler mails customers about their orders
type MailHandler struct {
	svc *Service
}

// NewMailHandler creates a MailHandler
func NewMailHandler(svc *Service) *MailHandler {
	return &MailHandler{svc: svc}
}

// EventTypes returns the event types this handler is interested in
func (h *MailHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced, order.EventTypeOrderStatusChanged}
}

// Handle dispatches on the event type
func (h *MailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		return h.svc.MailOrderPlaced(ctx, e)
	case *order.OrderStatusChangedEvent:
		return h.svc.MailStatusChanged(ctx, e)
	}
	return fmt.Errorf("mail handler: unexpected event %T", event)
}

// WhatsAppHandler sends WhatsApp alerts to the shop and customers
type WhatsAppHandler struct {
	svc *Service
}

// NewWhatsAppHandler creates a WhatsAppHandler
func NewWhatsAppHandler(svc *Service) *WhatsAppHandler {
	return &WhatsAppHandler{svc: svc}
}

// EventTypes returns the event types this handler is interested in
func (h *WhatsAppHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced, order.EventTypeOrderStatusChanged}
}

// Handle dispatches on the event type
func (h *WhatsAppHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		return h.svc.WhatsAppOrderPlaced(ctx, e)
	case *order.OrderStatusChangedEvent:
		return h.svc.WhatsAppOrderReady(ctx, e)
	}
	return fmt.Errorf("whatsapp handler: unexpected event %T", event)
}

var (
	_ shared.EventHandler = (*MailHandler)(nil)
	_ shared.EventHandler = (*WhatsAppHandler)(nil)
)
