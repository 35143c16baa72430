package main

import (
	"context"
	"fmt"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/shopspring/decimal"
)

// report summarises a run. Problems is empty when stock was taken exactly once.
type report struct {
	Attempts      int             `json:"attempts"`
	Applied       int             `json:"applied"`
	Skipped       int             `json:"skipped"`
	Rejected      int             `json:"rejected"`
	Failed        int             `json:"failed"`
	Deducted      bool            `json:"inventory_deducted"`
	SaleMovements int             `json:"sale_movements"`
	ExpectedStock decimal.Decimal `json:"expected_stock"`
	FinalStock    decimal.Decimal `json:"final_stock"`
	Problems      []string        `json:"problems,omitempty"`
}

func (r *report) OK() bool { return len(r.Problems) == 0 }

func (r *report) fail(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// verify reads back the order, its SALE movements and the product stock and
// checks them against the fixture and the workers' outcomes
func verify(ctx context.Context, orders order.Repository, movements inventory.MovementRepository, stock inventory.StockItemRepository, fx *fixture, results []attemptResult) (*report, error) {
	r := &report{
		Attempts:      len(results),
		ExpectedStock: fx.InitialStock.Sub(fx.Quantity),
	}
	for _, res := range results {
		switch res.Outcome {
		case outcomeApplied:
			r.Applied++
		case outcomeSkipped:
			r.Skipped++
		case outcomeRejected:
			r.Rejected++
		default:
			r.Failed++
		}
	}

	o, err := orders.FindByID(ctx, fx.OrderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	moves, err := movements.FindByOrder(ctx, fx.OrderID, inventory.ReasonSale)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}
	item, err := stock.FindByProductID(ctx, fx.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}
	r.Deducted = o.InventoryDeducted
	r.SaleMovements = len(moves)
	r.FinalStock = item.Quantity

	if r.Applied != 1 {
		r.fail("expected exactly one applied call, got %d", r.Applied)
	}
	if r.Failed > 0 {
		r.fail("%d calls failed unexpectedly", r.Failed)
	}
	if !r.Deducted {
		r.fail("order is not flagged as deducted")
	}
	if r.SaleMovements != len(o.Items) {
		r.fail("expected %d SALE movements, found %d", len(o.Items), r.SaleMovements)
	}
	if !r.FinalStock.Equal(r.ExpectedStock) {
		r.fail("stock is %s, expected %s", r.FinalStock, r.ExpectedStock)
	}
	return r, nil
}
