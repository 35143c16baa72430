package order

import (
	"context"
	"fmt"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// pricedCart is a cart with current catalog prices applied
type pricedCart struct {
	lines    []order.LineInput
	products map[uuid.UUID]*catalog.Product
}

// price loads the cart's products and snapshots their prices. Every
// product must be sellable.
func (s *Service) price(ctx context.Context, cart []CartLine) (*pricedCart, error) {
	if len(cart) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	ids := make([]uuid.UUID, 0, len(cart))
	seen := make(map[uuid.UUID]bool, len(cart))
	for _, l := range cart {
		if !l.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	products, err := s.products.LoadForSale(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]order.LineInput, 0, len(cart))
	for _, l := range cart {
		p := products[l.ProductID]
		if p.Unit == catalog.UnitPiece || p.Unit == catalog.UnitCake || p.Unit == catalog.UnitDozen {
			if !l.Quantity.Equal(l.Quantity.Truncate(0)) {
				return nil, shared.NewDomainError("INVALID_QUANTITY",
					fmt.Sprintf("%s is sold in whole units (%s)", p.Name, p.Unit))
			}
		}
		lines = append(lines, order.LineInput{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    l.Quantity,
			Notes:       l.Notes,
			MadeToOrder: p.MadeToOrder,
		})
	}
	return &pricedCart{lines: lines, products: products}, nil
}

func (c *pricedCart) productIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	return ids
}

func (c *pricedCart) quantities() map[uuid.UUID]decimal.Decimal {
	q := make(map[uuid.UUID]decimal.Decimal, len(c.products))
	for _, l := range c.lines {
		q[l.ProductID] = q[l.ProductID].Add(l.Quantity)
	}
	return q
}

func (c *pricedCart) subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.UnitPrice.Mul(l.Quantity).Round(2))
	}
	return total
}

// earliestReady is the earliest pickup time over all products
func (c *pricedCart) earliestReady(now time.Time) time.Time {
	earliest := now
	for _, p := range c.products {
		if !p.MadeToOrder {
			continue
		}
		if at := p.EarliestReadyAt(now); at.After(earliest) {
			earliest = at
		}
	}
	return earliest
}

// schedule validates the requested pickup or delivery time. Carts with
// made-to-order products and no requested time are scheduled at the
// earliest ready time.
func (c *pricedCart) schedule(now time.Time, requested *time.Time) (*time.Time, error) {
	earliest := c.earliestReady(now)
	if requested == nil {
		if earliest.After(now) {
			return &earliest, nil
		}
		return nil, nil
	}
	if requested.Before(now) {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Scheduled time is in the past")
	}
	if requested.Before(earliest) {
		return nil, shared.NewDomainError("LEAD_TIME",
			fmt.Sprintf("The order can be ready from %s", earliest.Format("02/01/2006 15:04")))
	}
	return requested, nil
}
