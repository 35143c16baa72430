package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db)
}

// FindByID finds an order by ID with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.conn(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByNumber finds an order by its human-facing number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var o order.Order
	if err := r.conn(ctx).Preload("Items").First(&o, "number = ?", strings.ToUpper(number)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll lists orders matching the filter with their items
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.Filter) ([]order.Order, int64, error) {
	query := r.conn(ctx).Model(&order.Order{})

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.BakerID != nil {
		query = query.Where("baker_id = ?", *filter.BakerID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.DueFrom != nil {
		query = query.Where("COALESCE(scheduled_for, created_at) >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("COALESCE(scheduled_for, created_at) < ?", *filter.DueTo)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(number) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?", like, like, like)
	}

	total, err := countOf(query)
	if err != nil {
		return nil, 0, err
	}

	var orders []order.Order
	err = paginate(query, filter.Filter).
		Preload("Items").
		Order(orderClause(filter.OrderBy, filter.OrderDir, OrderSortFields, "created_at")).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// FindStale returns unpaid PENDING online orders created before cutoff, oldest first
func (r *GormOrderRepository) FindStale(ctx context.Context, cutoff time.Time, limit int) ([]order.Order, error) {
	var orders []order.Order
	err := r.conn(ctx).
		Where("status = ? AND payment_status = ? AND channel = ?",
			order.StatusPending, order.PaymentStatusPending, order.ChannelOnline).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Create inserts an order and its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.conn(ctx).Create(o).Error
}

// SaveWithLock saves with optimistic locking (version check).
// Items are immutable after checkout and the inventory columns belong to the claims.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	result := r.conn(ctx).
		Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]any{
			"status":         o.Status,
			"payment_method": o.PaymentMethod,
			"payment_status": o.PaymentStatus,
			"discount":       o.Discount,
			"total":          o.Total,
			"cancel_reason":  o.CancelReason,
			"baker_id":       o.BakerID,
			"confirmed_at":   o.ConfirmedAt,
			"delivered_at":   o.DeliveredAt,
			"cancelled_at":   o.CancelledAt,
			"paid_at":        o.PaidAt,
			"version":        o.Version,
			"updated_at":     o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// NextNumber bumps the per-day counter with an upsert and formats the result
func (r *GormOrderRepository) NextNumber(ctx context.Context, day time.Time) (string, error) {
	key := day.Format("20060102")
	var last int
	err := r.conn(ctx).Raw(
		`INSERT INTO order_sequences (day, last) VALUES (?, 1)
		 ON CONFLICT (day) DO UPDATE SET last = order_sequences.last + 1
		 RETURNING last`, key,
	).Scan(&last).Error
	if err != nil {
		return "", err
	}
	if last == 0 {
		return "", errors.New("order sequence returned no value")
	}
	return order.FormatNumber(day, last), nil
}

// ClaimInventoryDeduction sets inventory_deducted only if it is still false
func (r *GormOrderRepository) ClaimInventoryDeduction(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.conn(ctx).
		Model(&order.Order{}).
		Where("id = ? AND inventory_deducted = ?", id, false).
		UpdateColumns(map[string]any{
			"inventory_deducted":    true,
			"inventory_deducted_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ClaimInventoryRestore sets inventory_restored only for a deducted, unrestored order
func (r *GormOrderRepository) ClaimInventoryRestore(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.conn(ctx).
		Model(&order.Order{}).
		Where("id = ? AND inventory_deducted = ? AND inventory_restored = ?", id, true, false).
		UpdateColumn("inventory_restored", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

var _ order.Repository = (*GormOrderRepository)(nil)
