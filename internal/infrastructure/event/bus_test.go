package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Note string `json:"note"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New()),
		Note:            "fresh bread",
	}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	orders := newTestHandler("OrderPlaced")
	stock := newTestHandler("InventoryDeducted")
	bus.Subscribe(orders)
	bus.Subscribe(stock)

	err := bus.Publish(context.Background(), newTestEvent("OrderPlaced"), newTestEvent("OrderPlaced"))
	require.NoError(t, err)

	assert.Equal(t, 2, orders.count())
	assert.Equal(t, 0, stock.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("OrderPlaced")
	bus.Subscribe(h, "OrderPaid")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPaid")))

	assert.Equal(t, 1, h.count())
	assert.Equal(t, 0, bus.HandlerCount("OrderPlaced"))
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	all := newTestHandler()
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced"), newTestEvent("StockBelowMinimum")))

	assert.Equal(t, 2, all.count())
	assert.Equal(t, 1, bus.HandlerCount("anything"))
}

func TestInMemoryEventBus_JoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	errA := errors.New("whatsapp down")
	errB := errors.New("smtp down")

	a := newTestHandler("OrderPlaced")
	a.err = errA
	b := newTestHandler("OrderPlaced")
	b.err = errB
	ok := newTestHandler("OrderPlaced")
	bus.Subscribe(a)
	bus.Subscribe(b)
	bus.Subscribe(ok)

	err := bus.Publish(context.Background(), newTestEvent("OrderPlaced"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 1, ok.count(), "later handlers still run after a failure")
}

func TestInMemoryEventBus_PanicBecomesError(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bad := newTestHandler("OrderPlaced")
	bad.panicWith = "nil map"
	good := newTestHandler("OrderPlaced")
	bus.Subscribe(bad)
	bus.Subscribe(good)

	err := bus.Publish(context.Background(), newTestEvent("OrderPlaced"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panicked: nil map")
	assert.Equal(t, 1, good.count())
}

func TestInMemoryEventBus_NoMatchingHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("Nobody")))
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("OrderPlaced", "OrderPaid")
	all := newTestHandler()
	bus.Subscribe(h)
	bus.Subscribe(all)

	bus.Unsubscribe(h)
	bus.Unsubscribe(all)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Equal(t, 0, h.count())
	assert.Equal(t, 0, all.count())
	assert.Equal(t, 0, bus.HandlerCount("OrderPaid"))
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("OrderPlaced")
	bus.Subscribe(h)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	err := bus.Publish(context.Background(), newTestEvent("OrderPlaced"))
	assert.ErrorIs(t, err, ErrBusStopped)

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Equal(t, 1, h.count())
}
