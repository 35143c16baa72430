package inventory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	appinventory "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeductForOrder_ConcurrentCallsDeductOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrency test in short mode")
	}
	const workers = 12

	db := testutil.NewFileSQLiteDB(t, 4)
	svc := newService(t, db, fakeSettings{})

	bread := testutil.SeedProduct(t, db, "Marraqueta", 100, 0)
	cake := testutil.SeedProduct(t, db, "Torta Tres Leches", 10, 0)
	o := testutil.SeedOrder(t, db, map[*catalog.Product]int64{bread: 8, cake: 2})

	var (
		applied atomic.Int32
		skipped atomic.Int32
		wg      sync.WaitGroup
		start   = make(chan struct{})
		errs    = make(chan error, workers)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := svc.DeductForOrder(context.Background(), o.ID, nil)
			if err != nil {
				errs <- err
				return
			}
			if res.Applied() {
				applied.Add(1)
			} else {
				skipped.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	assert.EqualValues(t, 1, applied.Load())
	assert.EqualValues(t, workers-1, skipped.Load())
	assert.True(t, testutil.StockOf(t, db, bread.ID).Equal(decimal.NewFromInt(92)))
	assert.True(t, testutil.StockOf(t, db, cake.ID).Equal(decimal.NewFromInt(8)))
	assert.EqualValues(t, 2, testutil.CountMovements(t, db, o.ID, inventory.ReasonSale))
	assert.True(t, reloadOrder(t, db, o.ID).InventoryDeducted)
}

func TestDeductForOrder_CompetingOrdersNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrency test in short mode")
	}
	const orders = 10

	db := testutil.NewFileSQLiteDB(t, 4)
	svc := newService(t, db, fakeSettings{})

	// room for exactly four orders of three
	bread := testutil.SeedProduct(t, db, "Pan de Batalla", 12, 0)
	ids := make([]uuid.UUID, 0, orders)
	for range orders {
		ids = append(ids, testutil.SeedOrder(t, db, map[*catalog.Product]int64{bread: 3}).ID)
	}

	var (
		applied      atomic.Int32
		insufficient atomic.Int32
		wg           sync.WaitGroup
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			res, err := svc.DeductForOrder(context.Background(), id, nil)
			switch {
			case errors.Is(err, shared.ErrInsufficientStock):
				insufficient.Add(1)
			case err != nil:
				t.Errorf("unexpected error: %v", err)
			case res.Outcome == appinventory.OutcomeApplied:
				applied.Add(1)
			}
		}(id)
	}
	wg.Wait()

	require.EqualValues(t, 4, applied.Load())
	assert.EqualValues(t, orders-4, insufficient.Load())
	assert.True(t, testutil.StockOf(t, db, bread.ID).IsZero())
}
