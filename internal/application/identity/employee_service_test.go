package identity

import (
	"context"
	"testing"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/auth"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/persistence"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newEmployeeService(t *testing.T) (*EmployeeService, *auth.InMemoryTokenBlacklist) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := NewEmployeeService(
		persistence.NewGormTransactionScope(db),
		persistence.NewGormUserRepository(db),
		blacklist,
		zaptest.NewLogger(t),
	)
	return svc, blacklist
}

func TestEmployeeService_Create(t *testing.T) {
	svc, _ := newEmployeeService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, CreateEmployeeRequest{
		Name: "Jorge Vargas", Email: "jorge@panificadora.bo", Password: "hornos123", Role: identity.RoleBaker,
	})
	require.NoError(t, err)
	assert.Equal(t, identity.RoleBaker, resp.Role)
	assert.True(t, resp.IsActive)

	_, err = svc.Create(ctx, CreateEmployeeRequest{
		Name: "Otro Jorge", Email: "JORGE@panificadora.bo", Password: "hornos123", Role: identity.RoleVendor,
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = svc.Create(ctx, CreateEmployeeRequest{
		Name: "Cliente", Email: "cliente@example.com", Password: "hornos123", Role: identity.RoleCustomer,
	})
	assertCode(t, err, "INVALID_ROLE")
}

func TestEmployeeService_LastAdminGuard(t *testing.T) {
	svc, blacklist := newEmployeeService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "Nancy", "nancy@panificadora.bo", "admin1234")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.EnsureAdmin(ctx, "Nancy", "nancy@panificadora.bo", "admin1234")
	require.NoError(t, err)
	assert.False(t, created)

	admins, err := svc.ListByRole(ctx, identity.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	nancy := admins[0].ID

	second, err := svc.Create(ctx, CreateEmployeeRequest{
		Name: "Pedro", Email: "pedro@panificadora.bo", Password: "admin1234", Role: identity.RoleAdmin,
	})
	require.NoError(t, err)

	t.Run("cannot deactivate self", func(t *testing.T) {
		_, err := svc.Deactivate(ctx, nancy, nancy)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("deactivate another admin while one remains", func(t *testing.T) {
		resp, err := svc.Deactivate(ctx, second.ID, nancy)
		require.NoError(t, err)
		assert.False(t, resp.IsActive)

		revoked, err := blacklist.IsUserTokenInvalidated(ctx, second.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("last active admin cannot be demoted", func(t *testing.T) {
		vendor := identity.RoleVendor
		_, err := svc.Update(ctx, nancy, second.ID, UpdateEmployeeRequest{Role: &vendor})
		assertCode(t, err, "LAST_ADMIN")

		got, err := svc.Get(ctx, nancy)
		require.NoError(t, err)
		assert.Equal(t, identity.RoleAdmin, got.Role)
	})

	t.Run("last active admin cannot be deactivated", func(t *testing.T) {
		_, err := svc.Deactivate(ctx, nancy, second.ID)
		assertCode(t, err, "LAST_ADMIN")
	})
}

func TestEmployeeService_UpdateAndList(t *testing.T) {
	svc, _ := newEmployeeService(t)
	ctx := context.Background()
	actor := uuid.New()

	vendor, err := svc.Create(ctx, CreateEmployeeRequest{
		Name: "Lucía Flores", Email: "lucia@panificadora.bo", Password: "caja12345", Role: identity.RoleVendor,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateEmployeeRequest{
		Name: "Mario Choque", Email: "mario@panificadora.bo", Password: "horno1234", Role: identity.RoleBaker,
	})
	require.NoError(t, err)

	name, phone, role := "Lucía Flores Paz", "+59172222222", identity.RoleBaker
	updated, err := svc.Update(ctx, vendor.ID, actor, UpdateEmployeeRequest{Name: &name, Phone: &phone, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, identity.RoleBaker, updated.Role)
	assert.Equal(t, vendor.Version+1, updated.Version)

	bakers, err := svc.ListByRole(ctx, identity.RoleBaker)
	require.NoError(t, err)
	assert.Len(t, bakers, 2)

	page, err := svc.List(ctx, EmployeeListFilter{Search: "mario"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Mario Choque", page.Items[0].Name)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
