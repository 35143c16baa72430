package settings_test

import (
	"context"
	"testing"

	appsettings "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/cache"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/persistence"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*appsettings.Service, *persistence.GormSettingRepository) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repo := persistence.NewGormSettingRepository(db)
	settingsCache := cache.NewTieredSettingsCache(nil)
	t.Cleanup(func() { _ = settingsCache.Close() })
	return appsettings.NewService(repo, settingsCache, nil), repo
}

func TestService_TypedReadersFallBackToDefaults(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	assert.False(t, svc.Bool(ctx, settings.KeyAllowNegativeStock))
	assert.True(t, svc.Decimal(ctx, settings.KeyDeliveryFee).Equal(decimal.NewFromInt(10)))
	assert.Equal(t, int64(48), svc.Int(ctx, settings.KeyStaleAfterHours))
	assert.Equal(t, "Panificadora Nancy", svc.String(ctx, settings.KeyStoreName))

	_, err := svc.Get(ctx, "no.such.key")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_Seed(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(settings.Defaults())), n)

	n, err = svc.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	public, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Less(t, len(public), len(all))
	for _, s := range public {
		assert.True(t, s.IsPublic, s.Key)
	}
}

func TestService_UpdateInvalidatesCache(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Seed(ctx)
	require.NoError(t, err)

	// warm the cache
	assert.False(t, svc.Bool(ctx, settings.KeyAllowNegativeStock))

	resp, err := svc.Update(ctx, settings.KeyAllowNegativeStock, appsettings.UpdateSettingRequest{Value: "true"})
	require.NoError(t, err)
	assert.Equal(t, "BOOL", resp.Type)
	assert.True(t, svc.Bool(ctx, settings.KeyAllowNegativeStock))
}

func TestService_UpdateValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Seed(ctx)
	require.NoError(t, err)

	t.Run("rejects value of wrong type", func(t *testing.T) {
		_, err := svc.Update(ctx, settings.KeyDeliveryFee, appsettings.UpdateSettingRequest{Value: "gratis"})
		assert.Error(t, err)
	})

	t.Run("type of existing key is fixed", func(t *testing.T) {
		_, err := svc.Update(ctx, settings.KeyDeliveryFee, appsettings.UpdateSettingRequest{Value: "5", Type: "INT"})
		assert.Error(t, err)
	})

	t.Run("new key needs a type", func(t *testing.T) {
		_, err := svc.Update(ctx, "store.instagram", appsettings.UpdateSettingRequest{Value: "@nancy"})
		assert.Error(t, err)

		public := true
		resp, err := svc.Update(ctx, "store.instagram", appsettings.UpdateSettingRequest{
			Value: "@nancy", Type: "STRING", Group: "store", IsPublic: &public,
		})
		require.NoError(t, err)
		assert.Equal(t, "store", resp.Group)
		assert.True(t, resp.IsPublic)
	})
}
