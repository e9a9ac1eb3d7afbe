package services

import (
	"errors"
	"testing"
	"time"

	"riego/config"
	"riego/internal/models"
	"riego/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService(config.Config{
		JWTSecret:               "test-secret-with-enough-entropy",
		AccessTokenTTLMinutes:   5,
		RefreshTokenTTLHours:    24,
		PasswordResetTTLMinutes: 30,
	})
}

func newTokenUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{BaseModel: models.BaseModel{ID: 7}, Username: "agricultor"}
	require.NoError(t, user.SetPassword("riego-seguro"))
	return user
}

func TestTokenService_Pair(t *testing.T) {
	service := newTestTokenService()
	user := newTokenUser(t)

	pair, err := service.IssuePair(user)
	require.NoError(t, err)

	userID, err := service.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := service.ParseAccess(pair.Refresh)
		assert.True(t, errors.Is(err, types.ErrInvalidToken))
	})

	t.Run("refresh issues a new access token", func(t *testing.T) {
		access, err := service.Refresh(pair.Refresh)
		require.NoError(t, err)
		userID, err := service.ParseAccess(access)
		require.NoError(t, err)
		assert.Equal(t, 7, userID)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		_, err := service.Refresh(pair.Access)
		assert.True(t, errors.Is(err, types.ErrInvalidToken))
	})

	t.Run("expired access token", func(t *testing.T) {
		service.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
		defer func() { service.now = time.Now }()

		_, err := service.ParseAccess(pair.Access)
		assert.True(t, errors.Is(err, types.ErrInvalidToken))
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewTokenService(config.Config{JWTSecret: "another-secret", AccessTokenTTLMinutes: 5})
		_, err := other.ParseAccess(pair.Access)
		assert.True(t, errors.Is(err, types.ErrInvalidToken))
	})
}

func TestTokenService_PasswordReset(t *testing.T) {
	service := newTestTokenService()
	user := newTokenUser(t)

	uid, token, err := service.IssuePasswordReset(user)
	require.NoError(t, err)

	decoded, err := DecodeUID(uid)
	require.NoError(t, err)
	assert.Equal(t, user.ID, decoded)

	require.NoError(t, service.VerifyPasswordReset(user, token))

	t.Run("tampered token", func(t *testing.T) {
		err := service.VerifyPasswordReset(user, token+"x")
		assert.True(t, errors.Is(err, types.ErrInvalidToken))
	})

	t.Run("other user", func(t *testing.T) {
		other := newTokenUser(t)
		other.ID = 8
		err := service.VerifyPasswordReset(other, token)
		assert.True(t, errors.Is(err, types.ErrInvalidToken))
	})

	t.Run("expired", func(t *testing.T) {
		service.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
		defer func() { service.now = time.Now }()

		err := service.VerifyPasswordReset(user, token)
		assert.True(t, errors.Is(err, types.ErrInvalidToken))
	})

	t.Run("single use after password change", func(t *testing.T) {
		require.NoError(t, user.SetPassword("otra-clave-99"))
		err := service.VerifyPasswordReset(user, token)
		assert.True(t, errors.Is(err, types.ErrInvalidToken))
	})
}

func TestDecodeUID(t *testing.T) {
	assert.Equal(t, "NDI", EncodeUID(42))

	for _, uid := range []string{"", "***", EncodeUID(0), "YWJj"} {
		_, err := DecodeUID(uid)
		assert.True(t, errors.Is(err, types.ErrInvalidToken), uid)
	}
}
