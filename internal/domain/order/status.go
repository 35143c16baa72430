package order

// Status represents the lifecycle state of an order
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusInProduction   Status = "IN_PRODUCTION"
	StatusReady          Status = "READY"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusInProduction, StatusReady, StatusCancelled},
	StatusInProduction:   {StatusReady, StatusCancelled},
	StatusReady:          {StatusOutForDelivery, StatusDelivered, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered},
}

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProduction, StatusReady,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo checks if the status can move to target
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// DeductsInventory reports whether entering this status takes stock.
// An order passing through both still deducts once; see Order.InventoryDeducted.
func (s Status) DeductsInventory() bool {
	return s == StatusConfirmed || s == StatusDelivered
}

// Channel is where the order was taken
type Channel string

const (
	ChannelOnline Channel = "ONLINE"
	ChannelPOS    Channel = "POS"
)

// Fulfillment is how the customer receives the order
type Fulfillment string

const (
	FulfillmentPickup   Fulfillment = "PICKUP"
	FulfillmentDelivery Fulfillment = "DELIVERY"
)

// IsValid checks if the fulfillment is known
func (f Fulfillment) IsValid() bool {
	return f == FulfillmentPickup || f == FulfillmentDelivery
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentQR       PaymentMethod = "QR"
	PaymentCard     PaymentMethod = "CARD"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentQR, PaymentCard:
		return true
	}
	return false
}

// PaymentStatus tracks whether the order has been paid
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)
