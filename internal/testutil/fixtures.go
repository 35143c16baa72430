package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var orderSeq atomic.Int64

// SeedProduct stores a category, an active product and its stock row with
// the given quantity and minimum.
func SeedProduct(t testing.TB, db *gorm.DB, name string, stock, min int64) *catalog.Product {
	t.Helper()
	ctx := context.Background()

	category, err := catalog.NewCategory("Panes "+uuid.NewString()[:8], "", 0)
	require.NoError(t, err)
	require.NoError(t, db.WithContext(ctx).Create(category).Error)

	product, err := catalog.NewProduct(category.ID, name, catalog.UnitPiece, decimal.NewFromFloat(1.5))
	require.NoError(t, err)
	require.NoError(t, db.WithContext(ctx).Omit("Recipe").Create(product).Error)

	item, err := inventory.NewStockItem(product.ID)
	require.NoError(t, err)
	item.Quantity = decimal.NewFromInt(stock)
	item.MinQuantity = decimal.NewFromInt(min)
	require.NoError(t, db.WithContext(ctx).Create(item).Error)

	return product
}

// SeedOrder stores a PENDING online order with one line per product
func SeedOrder(t testing.TB, db *gorm.DB, quantities map[*catalog.Product]int64) *order.Order {
	t.Helper()

	lines := make([]order.LineInput, 0, len(quantities))
	for p, q := range quantities {
		lines = append(lines, order.LineInput{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    decimal.NewFromInt(q),
		})
	}
	o, err := order.Place(order.PlaceInput{
		Number:        fmt.Sprintf("PN-TEST-%06d", orderSeq.Add(1)),
		Customer:      order.Customer{Name: "Rosa Quispe", Phone: "+59170000000"},
		Fulfillment:   order.FulfillmentPickup,
		PaymentMethod: order.PaymentCash,
		Lines:         lines,
	})
	require.NoError(t, err)
	o.ClearDomainEvents()
	require.NoError(t, db.WithContext(context.Background()).Create(o).Error)
	return o
}

// StockOf reads a product's current stock
func StockOf(t testing.TB, db *gorm.DB, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	var item inventory.StockItem
	require.NoError(t, db.Where("product_id = ?", productID).First(&item).Error)
	return item.Quantity
}

// CountMovements counts ledger lines of an order with the given reason
func CountMovements(t testing.TB, db *gorm.DB, orderID uuid.UUID, reason inventory.MovementReason) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&inventory.Movement{}).
		Where("order_id = ? AND reason = ?", orderID, reason).
		Count(&n).Error)
	return n
}
