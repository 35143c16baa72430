package persistence

import (
	"context"
	"errors"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingRepository implements settings.Repository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

func (r *GormSettingRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db)
}

// Get finds a setting by key
func (r *GormSettingRepository) Get(ctx context.Context, key string) (*settings.Setting, error) {
	var s settings.Setting
	if err := r.conn(ctx).First(&s, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns settings ordered by group and key
func (r *GormSettingRepository) List(ctx context.Context, publicOnly bool) ([]settings.Setting, error) {
	query := r.conn(ctx).Model(&settings.Setting{})
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}
	var out []settings.Setting
	if err := query.Order("group_name ASC, key ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts the setting or overwrites its value and metadata
func (r *GormSettingRepository) Upsert(ctx context.Context, s *settings.Setting) error {
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "type", "group_name", "description", "is_public", "updated_at"}),
		}).
		Select("*").
		Create(s).Error
}

// SeedMissing inserts defaults whose keys are absent and leaves existing values alone
func (r *GormSettingRepository) SeedMissing(ctx context.Context, defaults []settings.Setting) (int64, error) {
	if len(defaults) == 0 {
		return 0, nil
	}
	result := r.conn(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Select("*").
		Create(&defaults)
	return result.RowsAffected, result.Error
}

var _ settings.Repository = (*GormSettingRepository)(nil)
