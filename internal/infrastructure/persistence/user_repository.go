package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db)
}

// Create creates a new user. All columns are written so an inactive user is
// not stored with the column default.
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return r.conn(ctx).Select("*").Create(user).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormUserRepository) SaveWithLock(ctx context.Context, user *identity.User) error {
	result := r.conn(ctx).
		Model(&identity.User{}).
		Where("id = ? AND version = ?", user.ID, user.Version-1).
		Updates(map[string]any{
			"name":            user.Name,
			"phone":           user.Phone,
			"password_hash":   user.PasswordHash,
			"role":            user.Role,
			"is_active":       user.IsActive,
			"failed_attempts": user.FailedAttempts,
			"locked_until":    user.LockedUntil,
			"last_login_at":   user.LastLoginAt,
			"version":         user.Version,
			"updated_at":      user.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.conn(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email (case-insensitive)
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var user identity.User
	if err := r.conn(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindAll finds all users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	query := r.applyFilter(r.conn(ctx).Model(&identity.User{}), filter)

	total, err := countOf(query)
	if err != nil {
		return nil, 0, err
	}

	var users []identity.User
	err = paginate(query, filter.Filter).
		Order(orderClause(filter.OrderBy, filter.OrderDir, UserSortFields, "created_at")).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ExistsByEmail checks if a user with the given email exists
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.conn(ctx).Model(&identity.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActiveByRole counts active users holding role
func (r *GormUserRepository) CountActiveByRole(ctx context.Context, role identity.Role) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&identity.User{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&count).Error
	return count, err
}

// applyFilter applies filter conditions to the query
func (r *GormUserRepository) applyFilter(query *gorm.DB, filter identity.UserFilter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}
	if len(filter.Roles) > 0 {
		query = query.Where("role IN ?", filter.Roles)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	return query
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
