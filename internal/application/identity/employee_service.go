package identity

import (
	"context"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var staffRoles = []identity.Role{identity.RoleAdmin, identity.RoleVendor, identity.RoleBaker}

// EmployeeService administers staff accounts
type EmployeeService struct {
	txScope   shared.TransactionScope
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(
	txScope shared.TransactionScope,
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{
		txScope:   txScope,
		userRepo:  userRepo,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Create creates a staff account
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*UserResponse, error) {
	if !req.Role.IsStaff() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Employees must be ADMIN, VENDOR or BAKER")
	}
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(req.Name, req.Email, req.Phone, req.Password, req.Role)
	if err != nil {
		return nil, err
	}
	user.ClearDomainEvents()
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Employee created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Update changes a staff account. Demoting or deactivating the last active
// admin is rejected, and so is an admin deactivating themselves.
func (s *EmployeeService) Update(ctx context.Context, id, actorID uuid.UUID, req UpdateEmployeeRequest) (*UserResponse, error) {
	var (
		user   *identity.User
		revoke bool
	)
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.findStaff(ctx, id)
		if err != nil {
			return err
		}
		loaded := user.Version
		wasAdmin := user.Role == identity.RoleAdmin && user.IsActive

		if req.Name != nil || req.Phone != nil {
			name, phone := user.Name, user.Phone
			if req.Name != nil {
				name = *req.Name
			}
			if req.Phone != nil {
				phone = *req.Phone
			}
			if err := user.UpdateProfile(name, phone); err != nil {
				return err
			}
		}
		if req.Role != nil && *req.Role != user.Role {
			if !req.Role.IsStaff() {
				return shared.NewDomainError("INVALID_ROLE", "Employees must be ADMIN, VENDOR or BAKER")
			}
			if err := user.SetRole(*req.Role); err != nil {
				return err
			}
			revoke = true
		}
		if req.IsActive != nil && *req.IsActive != user.IsActive {
			if !*req.IsActive && id == actorID {
				return shared.NewDomainError("INVALID_STATE", "You cannot deactivate your own account")
			}
			user.SetActive(*req.IsActive)
			revoke = revoke || !*req.IsActive
		}
		if req.Password != nil {
			if err := user.SetPassword(*req.Password); err != nil {
				return err
			}
			revoke = true
		}

		if wasAdmin && (user.Role != identity.RoleAdmin || !user.IsActive) {
			if err := s.ensureAnotherAdmin(ctx); err != nil {
				return err
			}
		}
		user.Version = loaded + 1
		return s.userRepo.SaveWithLock(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	if revoke {
		s.revoke(ctx, user.ID)
	}
	s.logger.Info("Employee updated",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.Bool("active", user.IsActive))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Deactivate disables a staff account and revokes its tokens
func (s *EmployeeService) Deactivate(ctx context.Context, id, actorID uuid.UUID) (*UserResponse, error) {
	inactive := false
	return s.Update(ctx, id, actorID, UpdateEmployeeRequest{IsActive: &inactive})
}

// Get returns a staff account
func (s *EmployeeService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.findStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List lists staff accounts
func (s *EmployeeService) List(ctx context.Context, filter EmployeeListFilter) (shared.Paginated[UserResponse], error) {
	roles := filter.Roles
	if len(roles) == 0 {
		roles = staffRoles
	}
	f := identity.UserFilter{
		Filter:     shared.NewFilter(filter.Page, filter.PageSize, "name", "asc", filter.Search),
		Roles:      roles,
		ActiveOnly: filter.ActiveOnly,
	}
	users, total, err := s.userRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		if users[i].Role.IsStaff() {
			out = append(out, ToUserResponse(&users[i]))
		}
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// ListByRole lists active staff holding role, e.g. the bakers a vendor can
// assign orders to.
func (s *EmployeeService) ListByRole(ctx context.Context, role identity.Role) ([]UserResponse, error) {
	page, err := s.List(ctx, EmployeeListFilter{Roles: []identity.Role{role}, ActiveOnly: true, PageSize: 100})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// EnsureAdmin creates the first admin when no active admin exists. It
// returns true when an account was created.
func (s *EmployeeService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	count, err := s.userRepo.CountActiveByRole(ctx, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.Create(ctx, CreateEmployeeRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     identity.RoleAdmin,
	}); err != nil {
		return false, err
	}
	s.logger.Warn("Bootstrap admin created; change its password", zap.String("email", email))
	return true, nil
}

func (s *EmployeeService) findStaff(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsStaff() {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (s *EmployeeService) ensureAnotherAdmin(ctx context.Context) error {
	count, err := s.userRepo.CountActiveByRole(ctx, identity.RoleAdmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return shared.NewDomainError("LAST_ADMIN", "At least one active administrator is required")
	}
	return nil
}

func (s *EmployeeService) revoke(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), refreshTTLCap); err != nil {
		s.logger.Error("Failed to revoke employee tokens", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
