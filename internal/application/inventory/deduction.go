package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const settingAllowNegativeStock = settings.KeyAllowNegativeStock

// DeductForOrder takes the order's quantities out of stock at most once.
//
// It joins the transaction carried by ctx, or opens one when there is none.
// The order's inventory_deducted flag is claimed first with a conditional
// update; a caller that loses the claim returns Skipped without touching
// stock. SALE movements already on the order also yield Skipped. A line with
// insufficient stock fails the call, and the caller's transaction rolls back
// the claim along with everything else. Made-to-order lines are never short:
// their balance goes negative and the production batch brings it back.
func (s *Service) DeductForOrder(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*DeductionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "deduct_for_order",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()

	result := &DeductionResult{OrderID: orderID}
	log := s.logger.With(zap.String("order_id", orderID.String()))

	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == order.StatusCancelled {
			return shared.NewDomainError("INVALID_STATE", "Cannot deduct stock for a cancelled order")
		}

		claimed, err := s.orders.ClaimInventoryDeduction(ctx, orderID, time.Now())
		if err != nil {
			return fmt.Errorf("claim deduction: %w", err)
		}
		if !claimed {
			result.Outcome, result.SkipReason = OutcomeSkipped, SkipAlreadyClaimed
			return nil
		}

		exists, err := s.movements.ExistsForOrder(ctx, orderID, inventory.ReasonSale)
		if err != nil {
			return fmt.Errorf("check sale movements: %w", err)
		}
		if exists {
			log.Warn("Order already has sale movements; deduction skipped")
			result.Outcome, result.SkipReason = OutcomeSkipped, SkipMovementsExist
			return nil
		}

		allowNegative := s.AllowsNegativeStock(ctx)
		names := productNames(o)
		quantities := o.Quantities()
		bakedToOrder := o.MadeToOrderProducts()

		lines := make([]inventory.LineChange, 0, len(quantities))
		moves := make([]*inventory.Movement, 0, len(quantities))
		var events []shared.DomainEvent

		// fixed order so concurrent deductions lock rows the same way
		for _, productID := range sortedIDs(quantities) {
			qty := quantities[productID]
			// made-to-order stock goes negative until the batch is recorded
			item, ok, err := s.stock.DecreaseIfAvailable(ctx, productID, qty, allowNegative || bakedToOrder[productID])
			if err != nil {
				return fmt.Errorf("decrease stock of %s: %w", productID, err)
			}
			if !ok {
				return s.insufficient(ctx, productID, names[productID], qty)
			}

			m, err := inventory.NewMovement(inventory.ItemTypeProduct, productID, inventory.MovementOut,
				inventory.ReasonSale, qty, item.Quantity)
			if err != nil {
				return err
			}
			moves = append(moves, m.ForOrder(orderID).By(actorID))
			lines = append(lines, inventory.LineChange{ProductID: productID, Quantity: qty, BalanceAfter: item.Quantity})

			before := item.Quantity.Add(qty)
			if item.MinQuantity.IsPositive() && !before.LessThan(item.MinQuantity) && item.Quantity.LessThan(item.MinQuantity) {
				events = append(events, inventory.NewStockBelowMinimumEvent(
					inventory.ItemTypeProduct, productID, item.Quantity, item.MinQuantity))
			}
			if item.Quantity.IsNegative() && !bakedToOrder[productID] {
				log.Warn("Stock went negative",
					zap.String("product", names[productID]),
					zap.String("quantity", item.Quantity.String()))
			}
		}

		if err := s.movements.Create(ctx, moves...); err != nil {
			return fmt.Errorf("write sale movements: %w", err)
		}
		events = append([]shared.DomainEvent{inventory.NewInventoryDeductedEvent(orderID, lines)}, events...)
		if err := s.saveEvents(ctx, events...); err != nil {
			return err
		}

		result.Outcome = OutcomeApplied
		result.Lines = lines
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if s.metrics != nil && errors.Is(err, shared.ErrInsufficientStock) {
			s.metrics.RecordInsufficientStock(ctx)
		}
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOutcome, string(result.Outcome),
		telemetry.SpanAttrReason, result.SkipReason,
		telemetry.SpanAttrLines, len(result.Lines),
	)

	if result.Applied() {
		log.Info("Inventory deducted for order", zap.Int("lines", len(result.Lines)))
	} else {
		log.Info("Inventory deduction skipped", zap.String("reason", result.SkipReason))
	}
	if s.metrics != nil {
		s.metrics.RecordDeduction(ctx, string(result.Outcome), result.SkipReason, len(result.Lines))
	}
	return result, nil
}

// RestoreForOrder gives back the stock taken by a deducted order, at most
// once. It mirrors the SALE movements written by DeductForOrder.
func (s *Service) RestoreForOrder(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*DeductionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "restore_for_order",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()

	result := &DeductionResult{OrderID: orderID}
	log := s.logger.With(zap.String("order_id", orderID.String()))

	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		claimed, err := s.orders.ClaimInventoryRestore(ctx, orderID)
		if err != nil {
			return fmt.Errorf("claim restore: %w", err)
		}
		if !claimed {
			result.Outcome, result.SkipReason = OutcomeSkipped, SkipAlreadyClaimed
			return nil
		}

		exists, err := s.movements.ExistsForOrder(ctx, orderID, inventory.ReasonSaleReversal)
		if err != nil {
			return fmt.Errorf("check reversal movements: %w", err)
		}
		if exists {
			log.Warn("Order already has reversal movements; restore skipped")
			result.Outcome, result.SkipReason = OutcomeSkipped, SkipMovementsExist
			return nil
		}

		sales, err := s.movements.FindByOrder(ctx, orderID, inventory.ReasonSale)
		if err != nil {
			return fmt.Errorf("load sale movements: %w", err)
		}
		if len(sales) == 0 {
			log.Warn("Deducted order has no sale movements; nothing to restore")
			result.Outcome, result.SkipReason = OutcomeSkipped, SkipNothingToRestore
			return nil
		}

		quantities := make(map[uuid.UUID]decimal.Decimal, len(sales))
		for _, m := range sales {
			quantities[m.ItemID] = quantities[m.ItemID].Add(m.Quantity)
		}

		lines := make([]inventory.LineChange, 0, len(quantities))
		moves := make([]*inventory.Movement, 0, len(quantities))
		for _, productID := range sortedIDs(quantities) {
			qty := quantities[productID]
			item, err := s.stock.Increase(ctx, productID, qty)
			if err != nil {
				return fmt.Errorf("increase stock of %s: %w", productID, err)
			}
			m, err := inventory.NewMovement(inventory.ItemTypeProduct, productID, inventory.MovementIn,
				inventory.ReasonSaleReversal, qty, item.Quantity)
			if err != nil {
				return err
			}
			moves = append(moves, m.ForOrder(orderID).By(actorID))
			lines = append(lines, inventory.LineChange{ProductID: productID, Quantity: qty, BalanceAfter: item.Quantity})
		}

		if err := s.movements.Create(ctx, moves...); err != nil {
			return fmt.Errorf("write reversal movements: %w", err)
		}
		if err := s.saveEvents(ctx, inventory.NewInventoryRestoredEvent(orderID, lines)); err != nil {
			return err
		}

		result.Outcome = OutcomeApplied
		result.Lines = lines
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, string(result.Outcome), telemetry.SpanAttrLines, len(result.Lines))

	if result.Applied() {
		log.Info("Inventory restored for order", zap.Int("lines", len(result.Lines)))
	}
	if s.metrics != nil {
		s.metrics.RecordRestore(ctx, string(result.Outcome), result.SkipReason, len(result.Lines))
	}
	return result, nil
}

func (s *Service) insufficient(ctx context.Context, productID uuid.UUID, name string, wanted decimal.Decimal) error {
	if name == "" {
		name = productID.String()
	}
	item, err := s.stock.FindByProductID(ctx, productID)
	if err != nil {
		return shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf("No stock record for %s", name))
	}
	return shared.NewDomainError("INSUFFICIENT_STOCK",
		fmt.Sprintf("Insufficient stock for %s: requested %s, available %s", name, wanted.String(), item.Quantity.String()))
}

func productNames(o *order.Order) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(o.Items))
	for _, it := range o.Items {
		names[it.ProductID] = it.ProductName
	}
	return names
}

func sortedIDs(m map[uuid.UUID]decimal.Decimal) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	return ids
}
