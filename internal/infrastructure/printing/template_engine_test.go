package printing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "Bs 0.00"},
		{"12.5", "Bs 12.50"},
		{"1234.567", "Bs 1,234.57"},
		{"1000000", "Bs 1,000,000.00"},
		{"-45.1", "Bs -45.10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "3", formatQuantity(decimal.RequireFromString("3.000")))
	assert.Equal(t, "1.25", formatQuantity(decimal.RequireFromString("1.2500")))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Pan De Batalla", titleCase("PAN DE BATALLA"))
	assert.Equal(t, "Marraqueta", titleCase("marraqueta"))
}

func TestTemplateEngine_Receipt(t *testing.T) {
	loc, err := time.LoadLocation("America/La_Paz")
	require.NoError(t, err)
	engine := NewTemplateEngine(loc)

	html, err := engine.Receipt(ReceiptData{
		StoreName:     "Panificadora Nancy",
		Number:        "PN-20260301-0007",
		IssuedAt:      time.Date(2026, 3, 1, 14, 5, 0, 0, time.UTC),
		CustomerName:  "juana <b>mamani</b>",
		PaymentMethod: "CASH",
		Lines: []ReceiptLine{
			{Name: "marraqueta", Quantity: decimal.NewFromInt(10), Unit: decimal.RequireFromString("0.50"), Subtotal: decimal.NewFromInt(5)},
		},
		Subtotal: decimal.NewFromInt(5),
		Discount: decimal.NewFromInt(1),
		Total:    decimal.NewFromInt(4),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "PN-20260301-0007")
	assert.Contains(t, html, "01/03/2026 10:05")
	assert.Contains(t, html, "Marraqueta")
	assert.Contains(t, html, "Bs 4.00")
	assert.Contains(t, html, "Descuento")
	assert.NotContains(t, html, "Envio")
	assert.NotContains(t, html, "<b>", "customer input must be escaped")
}

func TestTemplateEngine_ProductionSheet(t *testing.T) {
	engine := NewTemplateEngine(nil)
	at := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)

	html, err := engine.ProductionSheet(ProductionSheetData{
		StoreName:   "Panificadora Nancy",
		Day:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		GeneratedAt: at,
		Lines: []SheetLine{
			{Product: "torta de chocolate", Quantity: decimal.NewFromInt(3), Orders: 2, InStock: decimal.NewFromInt(1), ToBake: decimal.NewFromInt(2)},
		},
		Orders: []SheetOrder{
			{Number: "PN-20260301-0001", CustomerName: "ana", ScheduledFor: &at, Status: "CONFIRMED", Items: "2 x Torta de chocolate"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Dia 02/03/2026")
	assert.Contains(t, html, "Torta De Chocolate")
	assert.Contains(t, html, "07:30")
	assert.Contains(t, html, "PN-20260301-0001")

	empty, err := engine.ProductionSheet(ProductionSheetData{StoreName: "Panificadora Nancy", Day: at, GeneratedAt: at})
	require.NoError(t, err)
	assert.Contains(t, empty, "Sin pedidos para este dia")
}
