package event

import (
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
)

// RegisterAllEvents binds every event the services write to the outbox.
// A type missing here stays FAILED in the outbox until it is added.
func RegisterAllEvents(s *EventSerializer) {
	RegisterType[order.OrderPlacedEvent](s, order.EventTypeOrderPlaced)
	RegisterType[order.OrderStatusChangedEvent](s, order.EventTypeOrderStatusChanged)
	RegisterType[order.OrderPaidEvent](s, order.EventTypeOrderPaid)

	RegisterType[inventory.InventoryDeductedEvent](s, inventory.EventTypeInventoryDeducted)
	RegisterType[inventory.InventoryRestoredEvent](s, inventory.EventTypeInventoryRestored)
	RegisterType[inventory.StockBelowMinimumEvent](s, inventory.EventTypeStockBelowMinimum)

	RegisterType[catalog.ProductCreatedEvent](s, catalog.EventTypeProductCreated)
	RegisterType[catalog.ProductPriceChangedEvent](s, catalog.EventTypeProductPriceChanged)

	RegisterType[identity.UserRegisteredEvent](s, identity.EventTypeUserRegistered)
}
