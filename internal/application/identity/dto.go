package identity

import (
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterRequest creates a customer account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest authenticates with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest changes the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest changes the caller's contact data
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=120"`
	Phone string `json:"phone" binding:"omitempty,phone"`
}

// UserResponse is the API view of a user
type UserResponse struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone,omitempty"`
	Role        identity.Role `json:"role"`
	IsActive    bool          `json:"is_active"`
	LastLoginAt *time.Time    `json:"last_login_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Version     int           `json:"version"`
}

// ToUserResponse converts a user to its response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		Version:     u.Version,
	}
}

// AuthResponse is returned by login, register and refresh
type AuthResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	AccessTokenJTI string
	AccessTokenTTL time.Duration
	RefreshToken   string
}

// CreateEmployeeRequest creates a staff account
type CreateEmployeeRequest struct {
	Name     string        `json:"name" binding:"required,min=2,max=120"`
	Email    string        `json:"email" binding:"required,email,max=120"`
	Phone    string        `json:"phone" binding:"omitempty,phone"`
	Password string        `json:"password" binding:"required,min=8,max=72"`
	Role     identity.Role `json:"role" binding:"required,oneof=ADMIN VENDOR BAKER"`
}

// UpdateEmployeeRequest changes a staff account. Nil fields are kept.
type UpdateEmployeeRequest struct {
	Name     *string        `json:"name" binding:"omitempty,min=2,max=120"`
	Phone    *string        `json:"phone" binding:"omitempty,phone"`
	Role     *identity.Role `json:"role" binding:"omitempty,oneof=ADMIN VENDOR BAKER"`
	IsActive *bool          `json:"is_active"`
	Password *string        `json:"password" binding:"omitempty,min=8,max=72"`
}

// EmployeeListFilter is the query of the staff listing
type EmployeeListFilter struct {
	Search     string          `form:"search"`
	Roles      []identity.Role `form:"role"`
	ActiveOnly bool            `form:"active"`
	Page       int             `form:"page" binding:"omitempty,min=1"`
	PageSize   int             `form:"page_size" binding:"omitempty,min=1,max=100"`
}
