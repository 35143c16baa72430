package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderSeq int

func newPendingOrder(t *testing.T, productIDs ...uuid.UUID) *order.Order {
	t.Helper()
	if len(productIDs) == 0 {
		productIDs = []uuid.UUID{uuid.New()}
	}
	lines := make([]order.LineInput, 0, len(productIDs))
	for _, id := range productIDs {
		lines = append(lines, order.LineInput{
			ProductID:   id,
			ProductName: "Pan de Leche",
			UnitPrice:   decimal.NewFromInt(2),
			Quantity:    decimal.NewFromInt(3),
		})
	}
	orderSeq++
	o, err := order.Place(order.PlaceInput{
		Number:        fmt.Sprintf("PN-TEST-%04d", orderSeq),
		Customer:      order.Customer{Name: "Rosa", Phone: "+59170000000"},
		Fulfillment:   order.FulfillmentPickup,
		PaymentMethod: order.PaymentCash,
		Lines:         lines,
	})
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	o := newPendingOrder(t, uuid.New(), uuid.New())
	require.NoError(t, repo.Create(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Number, found.Number)
	assert.Len(t, found.Items, 2)
	assert.True(t, found.Total.Equal(decimal.NewFromInt(12)))
	assert.False(t, found.InventoryDeducted)

	byNumber, err := repo.FindByNumber(ctx, o.Number)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byNumber.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_ClaimInventoryDeduction(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	o := newPendingOrder(t)
	require.NoError(t, repo.Create(ctx, o))

	claimed, err := repo.ClaimInventoryDeduction(ctx, o.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimInventoryDeduction(ctx, o.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must lose")

	stored, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.InventoryDeducted)
	assert.NotNil(t, stored.InventoryDeductedAt)
}

func TestGormOrderRepository_ClaimInventoryRestore(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	o := newPendingOrder(t)
	require.NoError(t, repo.Create(ctx, o))

	claimed, err := repo.ClaimInventoryRestore(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, claimed, "nothing deducted yet")

	_, err = repo.ClaimInventoryDeduction(ctx, o.ID, time.Now())
	require.NoError(t, err)

	claimed, err = repo.ClaimInventoryRestore(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimInventoryRestore(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestGormOrderRepository_ClaimSQL(t *testing.T) {
	db, mock, _ := newMockDB(t)
	repo := NewGormOrderRepository(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "orders" SET "inventory_deducted"=\$1,"inventory_deducted_at"=\$2 WHERE id = \$3 AND inventory_deducted = \$4`).
		WithArgs(true, sqlmock.AnyArg(), id, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "orders" SET "inventory_restored"=\$1 WHERE id = \$2 AND inventory_deducted = \$3 AND inventory_restored = \$4`).
		WithArgs(true, id, true, false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.ClaimInventoryDeduction(context.Background(), id, time.Now())
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimInventoryRestore(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, claimed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	o := newPendingOrder(t)
	require.NoError(t, repo.Create(ctx, o))
	_, err := repo.ClaimInventoryDeduction(ctx, o.ID, time.Now())
	require.NoError(t, err)

	// o still holds InventoryDeducted=false; saving must not clear the claim
	require.NoError(t, o.TransitionTo(order.StatusConfirmed, nil))
	require.NoError(t, repo.SaveWithLock(ctx, o))

	stored, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, stored.Status)
	assert.True(t, stored.InventoryDeducted)
	assert.Equal(t, 2, stored.Version)

	stale := *o
	stale.Version = 1
	require.NoError(t, stale.Cancel("duplicate", nil))
	assert.ErrorIs(t, repo.SaveWithLock(ctx, &stale), shared.ErrConcurrencyConflict)
}

func TestGormOrderRepository_NextNumber(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	first, err := repo.NextNumber(ctx, day)
	require.NoError(t, err)
	second, err := repo.NextNumber(ctx, day)
	require.NoError(t, err)
	other, err := repo.NextNumber(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, "PN-20240501-0001", first)
	assert.Equal(t, "PN-20240501-0002", second)
	assert.Equal(t, "PN-20240502-0001", other)
}

func TestGormOrderRepository_FindAllAndStale(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	old := newPendingOrder(t)
	old.CreatedAt = time.Now().Add(-72 * time.Hour)
	require.NoError(t, repo.Create(ctx, old))

	fresh := newPendingOrder(t)
	require.NoError(t, repo.Create(ctx, fresh))

	confirmed := newPendingOrder(t)
	confirmed.CreatedAt = time.Now().Add(-72 * time.Hour)
	require.NoError(t, confirmed.TransitionTo(order.StatusConfirmed, nil))
	require.NoError(t, repo.Create(ctx, confirmed))

	stale, err := repo.FindStale(ctx, time.Now().Add(-48*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, old.ID, stale[0].ID)

	orders, total, err := repo.FindAll(ctx, order.Filter{
		Filter:   shared.Filter{Page: 1, PageSize: 10},
		Statuses: []order.Status{order.StatusPending},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	orders, total, err = repo.FindAll(ctx, order.Filter{
		Filter: shared.Filter{Search: confirmed.Number},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, confirmed.ID, orders[0].ID)
}
