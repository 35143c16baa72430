package identity

import (
	"context"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// UserFilter narrows user listings
type UserFilter struct {
	shared.Filter
	Roles      []Role
	ActiveOnly bool
}

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountActiveByRole(ctx context.Context, role Role) (int64, error)
	Create(ctx context.Context, user *User) error
	SaveWithLock(ctx context.Context, user *User) error
}
