package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the single role a user holds
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleVendor   Role = "VENDOR"
	RoleBaker    Role = "BAKER"
	RoleCustomer Role = "CUSTOMER"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleBaker, RoleCustomer:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to an employee
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleVendor || r == RoleBaker
}

// PasswordCost is the bcrypt cost used for new hashes
var PasswordCost = 12

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetter     = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit      = regexp.MustCompile(`[0-9]`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	loginLockTime = 15 * time.Minute
)

// MaxFailedLogins before the account is temporarily locked
const MaxFailedLogins = 5

// User is a customer or an employee
type User struct {
	shared.BaseAggregateRoot
	Name           string `gorm:"type:varchar(120);not null"`
	Email          string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Phone          string `gorm:"type:varchar(30)"`
	PasswordHash   string `gorm:"type:varchar(100);not null"`
	Role           Role   `gorm:"type:varchar(10);not null;index"`
	IsActive       bool   `gorm:"not null;default:true"`
	FailedAttempts int    `gorm:"not null;default:0"`
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user with a hashed password
func NewUser(name, email, phone, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 120 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name must be 1-120 characters")
	}
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Phone:             phone,
		PasswordHash:      hash,
		Role:              role,
		IsActive:          true,
	}
	u.AddDomainEvent(NewUserRegisteredEvent(u))
	return u, nil
}

// UpdateProfile changes contact data
func (u *User) UpdateProfile(name, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 120 {
		return shared.NewDomainError("INVALID_NAME", "Name must be 1-120 characters")
	}
	if err := validatePhone(phone); err != nil {
		return err
	}
	u.Name = name
	u.Phone = phone
	u.touch()
	return nil
}

// ChangePassword verifies the current password and sets a new one
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(next)
}

// SetPassword replaces the password without checking the old one
func (u *User) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.touch()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetRole changes the role of an employee. Customers cannot be promoted here.
func (u *User) SetRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	u.Role = role
	u.touch()
	return nil
}

// SetActive enables or disables login
func (u *User) SetActive(active bool) {
	u.IsActive = active
	if active {
		u.FailedAttempts = 0
		u.LockedUntil = nil
	}
	u.touch()
}

// CanLogin reports whether the account may authenticate at now
func (u *User) CanLogin(now time.Time) bool {
	if !u.IsActive {
		return false
	}
	return u.LockedUntil == nil || now.After(*u.LockedUntil)
}

// RecordLoginSuccess resets failure tracking
func (u *User) RecordLoginSuccess(now time.Time) {
	u.LastLoginAt = &now
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()
}

// RecordLoginFailure counts a failed attempt and locks the account after
// MaxFailedLogins. It returns true when the account got locked.
func (u *User) RecordLoginFailure(now time.Time) bool {
	u.FailedAttempts++
	u.touch()
	if u.FailedAttempts >= MaxFailedLogins {
		until := now.Add(loginLockTime)
		u.LockedUntil = &until
		u.FailedAttempts = 0
		return true
	}
	return false
}

func (u *User) touch() {
	u.IncrementVersion()
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if len(email) > 120 || !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Phone must be 7-15 digits, optionally prefixed with +")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < 8 || len(password) > 72 {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password must be 8-72 characters")
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}
