package persistence

import (
	"context"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/production"
	"gorm.io/gorm"
)

// GormBatchRepository implements production.Repository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// Create records a batch
func (r *GormBatchRepository) Create(ctx context.Context, batch *production.Batch) error {
	return DBFromContext(ctx, r.db).Create(batch).Error
}

// FindBetween returns batches produced in [from, to), newest first
func (r *GormBatchRepository) FindBetween(ctx context.Context, from, to time.Time) ([]production.Batch, error) {
	var batches []production.Batch
	err := DBFromContext(ctx, r.db).
		Where("produced_at >= ? AND produced_at < ?", from, to).
		Order("produced_at DESC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

var _ production.Repository = (*GormBatchRepository)(nil)
