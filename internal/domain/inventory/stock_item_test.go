package inventory

import (
	"errors"
	"testing"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestStockItem_Restock(t *testing.T) {
	item, err := NewStockItem(uuid.New())
	require.NoError(t, err)

	m, err := item.Restock(dec(24), ReasonProduction)
	require.NoError(t, err)

	assert.True(t, item.Quantity.Equal(dec(24)))
	assert.Equal(t, MovementIn, m.Type)
	assert.Equal(t, ReasonProduction, m.Reason)
	assert.True(t, m.BalanceAfter.Equal(dec(24)))
	assert.Equal(t, item.ProductID, m.ItemID)
	assert.Equal(t, 2, item.GetVersion())

	_, err = item.Restock(decimal.Zero, ReasonRestock)
	assert.Error(t, err)
}

func TestStockItem_Remove(t *testing.T) {
	item, _ := NewStockItem(uuid.New())
	_, _ = item.Restock(dec(10), ReasonRestock)
	require.NoError(t, item.SetMinimum(dec(5)))

	t.Run("fails when removing more than available", func(t *testing.T) {
		_, err := item.Remove(dec(11), ReasonWaste)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.True(t, item.Quantity.Equal(dec(10)))
	})

	t.Run("emits event when crossing minimum", func(t *testing.T) {
		m, err := item.Remove(dec(6), ReasonWaste)
		require.NoError(t, err)
		assert.True(t, m.SignedQuantity().Equal(dec(-6)))
		require.Len(t, item.GetDomainEvents(), 1)
		evt := item.GetDomainEvents()[0].(*StockBelowMinimumEvent)
		assert.True(t, evt.Quantity.Equal(dec(4)))
	})

	t.Run("does not repeat event while already below", func(t *testing.T) {
		item.ClearDomainEvents()
		_, err := item.Remove(dec(1), ReasonWaste)
		require.NoError(t, err)
		assert.Empty(t, item.GetDomainEvents())
	})
}

func TestStockItem_AdjustTo(t *testing.T) {
	item, _ := NewStockItem(uuid.New())
	_, _ = item.Restock(dec(10), ReasonRestock)

	m, err := item.AdjustTo(dec(7))
	require.NoError(t, err)
	assert.Equal(t, MovementAdjust, m.Type)
	assert.True(t, m.Quantity.Equal(dec(3)))
	assert.True(t, m.BalanceAfter.Equal(dec(7)))

	m, err = item.AdjustTo(dec(7))
	require.NoError(t, err, "zero delta adjustments are still recorded")
	assert.True(t, m.Quantity.IsZero())

	_, err = item.AdjustTo(dec(-1))
	assert.Error(t, err)
}

func TestIngredient_Consume(t *testing.T) {
	flour, err := NewIngredient("Harina 000", IngredientUnitKilo, dec(10), dec(0.9))
	require.NoError(t, err)
	_, err = flour.Purchase(dec(12))
	require.NoError(t, err)

	m, err := flour.Consume(dec(15))
	require.NoError(t, err)
	assert.True(t, flour.IsNegative())
	assert.True(t, m.BalanceAfter.Equal(dec(-3)))
	assert.Equal(t, ReasonProductionConsumption, m.Reason)
	require.Len(t, flour.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeStockBelowMinimum, flour.GetDomainEvents()[0].EventType())
}

func TestNewIngredient_Validation(t *testing.T) {
	_, err := NewIngredient("", IngredientUnitKilo, dec(0), dec(0))
	assert.Error(t, err)
	_, err = NewIngredient("Manteca", "lb", dec(0), dec(0))
	assert.Error(t, err)
	_, err = NewIngredient("Manteca", IngredientUnitKilo, dec(-1), dec(0))
	assert.Error(t, err)
}

func TestNewMovement(t *testing.T) {
	orderID := uuid.New()
	m, err := NewMovement(ItemTypeProduct, uuid.New(), MovementOut, ReasonSale, dec(2), dec(8))
	require.NoError(t, err)
	m.ForOrder(orderID).WithNote("PN-20240501-0001")
	assert.Equal(t, orderID, *m.OrderID)
	assert.Equal(t, "inventory_movements", m.TableName())

	_, err = NewMovement(ItemTypeProduct, uuid.Nil, MovementOut, ReasonSale, dec(2), dec(8))
	assert.Error(t, err)
	_, err = NewMovement(ItemTypeProduct, uuid.New(), MovementOut, "EATEN", dec(2), dec(8))
	assert.Error(t, err)
	_, err = NewMovement(ItemTypeProduct, uuid.New(), MovementOut, ReasonSale, decimal.Zero, dec(8))
	assert.Error(t, err)
}
