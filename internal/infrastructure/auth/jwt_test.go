package auth

import (
	"testing"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "panificadora-nancy",
	})
}

func newTestUser() *identity.User {
	u := &identity.User{Name: "Nancy Quispe", Email: "nancy@example.com", Role: identity.RoleVendor}
	u.ID = uuid.New()
	return u
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refresh.secret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()
	user := newTestUser()

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, identity.RoleVendor, claims.Role)
	assert.True(t, claims.HasRole(identity.RoleAdmin, identity.RoleVendor))
	assert.False(t, claims.HasRole(identity.RoleBaker))

	id, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.InDelta(t, 15*time.Minute, claims.GetRemainingTTL(), float64(5*time.Second))

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refresh.Role, "refresh tokens carry no role")
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestValidateToken_Errors(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestUser())
	require.NoError(t, err)

	t.Run("refresh token used as access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken, "signed with the refresh secret")
	})

	t.Run("wrong type with shared secret", func(t *testing.T) {
		shared := NewJWTService(config.JWTConfig{
			Secret:                 "one-secret-for-both-token-kinds!",
			AccessTokenExpiration:  time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "panificadora-nancy",
		})
		p, err := shared.GenerateTokenPair(newTestUser())
		require.NoError(t, err)
		_, err = shared.ValidateAccessToken(p.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  -time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "panificadora-nancy",
		})
		p, err := expired.GenerateTokenPair(newTestUser())
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "someone-else",
		})
		p, err := other.GenerateTokenPair(newTestUser())
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: uuid.NewString(), TokenType: TokenTypeAccess})
		s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
