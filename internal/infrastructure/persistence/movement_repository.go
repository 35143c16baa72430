package persistence

import (
	"context"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements inventory.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

func (r *GormMovementRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db)
}

// Create appends movements to the ledger
func (r *GormMovementRepository) Create(ctx context.Context, movements ...*inventory.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.conn(ctx).Create(movements).Error
}

// ExistsForOrder reports whether a movement with reason exists for the order
func (r *GormMovementRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID, reason inventory.MovementReason) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&inventory.Movement{}).
		Where("order_id = ? AND reason = ?", orderID, reason).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByOrder returns the movements of an order; an empty reason returns all
func (r *GormMovementRepository) FindByOrder(ctx context.Context, orderID uuid.UUID, reason inventory.MovementReason) ([]inventory.Movement, error) {
	query := r.conn(ctx).Where("order_id = ?", orderID)
	if reason != "" {
		query = query.Where("reason = ?", reason)
	}
	var movements []inventory.Movement
	if err := query.Order("created_at ASC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindAll lists ledger lines, newest first by default
func (r *GormMovementRepository) FindAll(ctx context.Context, filter inventory.MovementFilter) ([]inventory.Movement, int64, error) {
	query := r.conn(ctx).Model(&inventory.Movement{})
	if filter.ItemType != "" {
		query = query.Where("item_type = ?", filter.ItemType)
	}
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Reason != "" {
		query = query.Where("reason = ?", filter.Reason)
	}

	total, err := countOf(query)
	if err != nil {
		return nil, 0, err
	}

	var movements []inventory.Movement
	err = paginate(query, filter.Filter).
		Order(orderClause(filter.OrderBy, filter.OrderDir, MovementSortFields, "created_at")).
		Find(&movements).Error
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
