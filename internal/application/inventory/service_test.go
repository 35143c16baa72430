package inventory_test

import (
	"context"
	"errors"
	"testing"

	appinventory "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_StockOperations(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newService(t, db, fakeSettings{})
	ctx := context.Background()
	userID := uuid.New()

	bread := testutil.SeedProduct(t, db, "Pan Francés", 10, 4)

	t.Run("restock", func(t *testing.T) {
		resp, err := svc.Restock(ctx, appinventory.RestockRequest{ProductID: bread.ID, Quantity: decimal.NewFromInt(5), Note: "segunda hornada"}, &userID)
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(15)))
	})

	t.Run("restock rejects non-positive quantity", func(t *testing.T) {
		_, err := svc.Restock(ctx, appinventory.RestockRequest{ProductID: bread.ID, Quantity: decimal.Zero}, &userID)
		require.Error(t, err)
	})

	t.Run("restock of unknown product", func(t *testing.T) {
		_, err := svc.Restock(ctx, appinventory.RestockRequest{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)}, &userID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("waste cannot exceed stock", func(t *testing.T) {
		_, err := svc.RegisterWaste(ctx, appinventory.WasteRequest{ProductID: bread.ID, Quantity: decimal.NewFromInt(99)}, &userID)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("waste crossing the minimum raises an alert", func(t *testing.T) {
		resp, err := svc.RegisterWaste(ctx, appinventory.WasteRequest{ProductID: bread.ID, Quantity: decimal.NewFromInt(12), Note: "quemado"}, &userID)
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(3)))
		assert.True(t, resp.IsBelowMinimum)
		assert.Contains(t, outboxTypes(t, db), inventory.EventTypeStockBelowMinimum)
	})

	t.Run("adjust to counted value", func(t *testing.T) {
		resp, err := svc.Adjust(ctx, appinventory.AdjustRequest{ProductID: bread.ID, Counted: decimal.NewFromInt(7)}, &userID)
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(7)))
	})

	t.Run("set minimum", func(t *testing.T) {
		resp, err := svc.SetMinimum(ctx, bread.ID, appinventory.SetMinimumRequest{MinQuantity: decimal.NewFromInt(10)})
		require.NoError(t, err)
		assert.True(t, resp.IsBelowMinimum)
	})

	t.Run("ledger lists every change", func(t *testing.T) {
		page, err := svc.ListMovements(ctx, appinventory.MovementListFilter{ItemID: &bread.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Total)
		reasons := make([]string, 0, len(page.Items))
		for _, m := range page.Items {
			reasons = append(reasons, m.Reason)
		}
		assert.ElementsMatch(t, []string{"RESTOCK", "WASTE", "MANUAL"}, reasons)
	})

	t.Run("availability reports zero for unknown products", func(t *testing.T) {
		unknown := uuid.New()
		got, err := svc.Availability(ctx, []uuid.UUID{bread.ID, unknown})
		require.NoError(t, err)
		assert.True(t, got[bread.ID].Equal(decimal.NewFromInt(7)))
		assert.True(t, got[unknown].IsZero())
	})
}

func TestService_Ingredients(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newService(t, db, fakeSettings{})
	ctx := context.Background()

	flour, err := svc.CreateIngredient(ctx, appinventory.CreateIngredientRequest{
		Name:        "Harina 000",
		Unit:        inventory.IngredientUnitKilo,
		MinQuantity: decimal.NewFromInt(25),
		CostPerUnit: decimal.RequireFromString("6.50"),
	})
	require.NoError(t, err)
	assert.True(t, flour.Quantity.IsZero())

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.CreateIngredient(ctx, appinventory.CreateIngredientRequest{Name: "harina 000", Unit: inventory.IngredientUnitKilo})
		assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	})

	t.Run("purchase and adjust", func(t *testing.T) {
		resp, err := svc.PurchaseIngredient(ctx, flour.ID, appinventory.IngredientStockRequest{Quantity: decimal.NewFromInt(50)}, nil)
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(50)))

		resp, err = svc.AdjustIngredient(ctx, flour.ID, appinventory.IngredientStockRequest{Quantity: decimal.NewFromInt(48)}, nil)
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(48)))
	})

	t.Run("update with deactivation", func(t *testing.T) {
		inactive := false
		resp, err := svc.UpdateIngredient(ctx, flour.ID, appinventory.UpdateIngredientRequest{
			Name:        "Harina 0000",
			MinQuantity: decimal.NewFromInt(30),
			CostPerUnit: decimal.NewFromInt(7),
			IsActive:    &inactive,
		})
		require.NoError(t, err)
		assert.Equal(t, "Harina 0000", resp.Name)
		assert.False(t, resp.IsActive)

		// a second update must pass the version check
		_, err = svc.UpdateIngredient(ctx, flour.ID, appinventory.UpdateIngredientRequest{Name: "Harina 0000", MinQuantity: decimal.NewFromInt(30)})
		require.NoError(t, err)
	})

	t.Run("list", func(t *testing.T) {
		page, err := svc.ListIngredients(ctx, appinventory.IngredientListFilter{Search: "harina"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Total)
	})
}

func TestService_AddProduction(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newService(t, db, fakeSettings{})
	ctx := context.Background()
	baker := uuid.New()

	bread := testutil.SeedProduct(t, db, "Pan de Leche", 0, 0)
	butter, err := svc.CreateIngredient(ctx, appinventory.CreateIngredientRequest{Name: "Mantequilla", Unit: inventory.IngredientUnitKilo, MinQuantity: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = svc.PurchaseIngredient(ctx, butter.ID, appinventory.IngredientStockRequest{Quantity: decimal.NewFromInt(2)}, nil)
	require.NoError(t, err)

	resp, err := svc.AddProduction(ctx, bread.ID, decimal.NewFromInt(60),
		map[uuid.UUID]decimal.Decimal{butter.ID: decimal.RequireFromString("2.5")}, &baker, "hornada de la mañana")
	require.NoError(t, err)
	assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(60)))

	ing, err := svc.GetIngredient(ctx, butter.ID)
	require.NoError(t, err)
	assert.True(t, ing.Quantity.Equal(decimal.RequireFromString("-0.5")), "recorded usage may exceed recorded stock")
	assert.Contains(t, outboxTypes(t, db), inventory.EventTypeStockBelowMinimum)

	t.Run("missing ingredient rolls back", func(t *testing.T) {
		_, err := svc.AddProduction(ctx, bread.ID, decimal.NewFromInt(10),
			map[uuid.UUID]decimal.Decimal{uuid.New(): decimal.NewFromInt(1)}, &baker, "")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.True(t, testutil.StockOf(t, db, bread.ID).Equal(decimal.NewFromInt(60)))
	})
}

func TestService_LowStock(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newService(t, db, fakeSettings{})
	ctx := context.Background()

	testutil.SeedProduct(t, db, "Rosca", 2, 5)
	testutil.SeedProduct(t, db, "Pan Integral", 20, 5)
	_, err := svc.CreateIngredient(ctx, appinventory.CreateIngredientRequest{Name: "Levadura", Unit: inventory.IngredientUnitGram, MinQuantity: decimal.NewFromInt(500)})
	require.NoError(t, err)

	items, err := svc.LowStock(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"Rosca", "Levadura"}, names)

	n, err := svc.CountBelowMinimum(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
