package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Pan de Leche":            "pan-de-leche",
		"Marraqueta Ñandú":        "marraqueta-nandu",
		"  Torta Tres Leches!!  ": "torta-tres-leches",
		"Empanada (x12)":          "empanada-x12",
		"¡¡¡":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNewProduct(t *testing.T) {
	categoryID := uuid.New()

	t.Run("creates product with valid inputs", func(t *testing.T) {
		p, err := NewProduct(categoryID, "Pan de Batalla", UnitPiece, decimal.NewFromFloat(1.5))
		require.NoError(t, err)

		assert.Equal(t, "pan-de-batalla", p.Slug)
		assert.True(t, p.IsActive)
		assert.False(t, p.MadeToOrder)
		assert.Equal(t, 1, p.GetVersion())

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*ProductCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, p.ID, evt.ProductID)
	})

	t.Run("rejects non positive price", func(t *testing.T) {
		_, err := NewProduct(categoryID, "Pan", UnitPiece, decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Price must be greater than zero")
	})

	t.Run("rejects unknown unit", func(t *testing.T) {
		_, err := NewProduct(categoryID, "Pan", "box", decimal.NewFromInt(1))
		require.Error(t, err)
	})

	t.Run("requires category", func(t *testing.T) {
		_, err := NewProduct(uuid.Nil, "Pan", UnitPiece, decimal.NewFromInt(1))
		require.Error(t, err)
	})
}

func TestProduct_SetPrice(t *testing.T) {
	p, err := NewProduct(uuid.New(), "Croissant", UnitPiece, decimal.NewFromInt(3))
	require.NoError(t, err)
	p.ClearDomainEvents()

	require.NoError(t, p.SetPrice(decimal.NewFromInt(3)))
	assert.Empty(t, p.GetDomainEvents(), "unchanged price publishes nothing")

	require.NoError(t, p.SetPrice(decimal.NewFromFloat(3.5)))
	require.Len(t, p.GetDomainEvents(), 1)
	evt := p.GetDomainEvents()[0].(*ProductPriceChangedEvent)
	assert.True(t, evt.OldPrice.Equal(decimal.NewFromInt(3)))
	assert.True(t, evt.NewPrice.Equal(decimal.NewFromFloat(3.5)))
	assert.Equal(t, 2, p.GetVersion())
}

func TestProduct_SetRecipe(t *testing.T) {
	p, err := NewProduct(uuid.New(), "Pan Integral", UnitPiece, decimal.NewFromInt(2))
	require.NoError(t, err)
	flour := uuid.New()

	t.Run("replaces recipe lines", func(t *testing.T) {
		err := p.SetRecipe([]RecipeLine{
			{IngredientID: flour, QuantityPerUnit: decimal.NewFromFloat(0.08)},
			{IngredientID: uuid.New(), QuantityPerUnit: decimal.NewFromFloat(0.002)},
		})
		require.NoError(t, err)
		require.Len(t, p.Recipe, 2)
		assert.Equal(t, p.ID, p.Recipe[0].ProductID)
		assert.NotEqual(t, uuid.Nil, p.Recipe[0].ID)
	})

	t.Run("rejects duplicated ingredient", func(t *testing.T) {
		err := p.SetRecipe([]RecipeLine{
			{IngredientID: flour, QuantityPerUnit: decimal.NewFromInt(1)},
			{IngredientID: flour, QuantityPerUnit: decimal.NewFromInt(2)},
		})
		require.Error(t, err)
		assert.Len(t, p.Recipe, 2, "recipe untouched on error")
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		err := p.SetRecipe([]RecipeLine{{IngredientID: flour, QuantityPerUnit: decimal.Zero}})
		require.Error(t, err)
	})
}

func TestProduct_SetProduction(t *testing.T) {
	p, err := NewProduct(uuid.New(), "Torta Selva Negra", UnitCake, decimal.NewFromInt(120))
	require.NoError(t, err)

	require.NoError(t, p.SetProduction(true, 48))
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(48*time.Hour), p.EarliestReadyAt(now))

	require.NoError(t, p.SetProduction(false, 48))
	assert.Equal(t, 0, p.LeadTimeHours)

	assert.Error(t, p.SetProduction(true, -1))
}

func TestProduct_ActivateDeactivate(t *testing.T) {
	p, err := NewProduct(uuid.New(), "Alfajor", UnitPiece, decimal.NewFromInt(2))
	require.NoError(t, err)

	assert.Error(t, p.Activate())
	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive)
	assert.Error(t, p.Deactivate())
	require.NoError(t, p.Activate())
}

func TestCategory(t *testing.T) {
	c, err := NewCategory("Panes Dulces", "", 1)
	require.NoError(t, err)
	assert.Equal(t, "panes-dulces", c.Slug)

	require.NoError(t, c.Update("Pastelería", "tortas y masas", 2))
	assert.Equal(t, "pasteleria", c.Slug)
	assert.Equal(t, 2, c.GetVersion())

	c.SetActive(false)
	assert.False(t, c.IsActive)

	_, err = NewCategory("", "", 0)
	assert.Error(t, err)
}
