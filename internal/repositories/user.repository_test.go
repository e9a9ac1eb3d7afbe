package repositories

import (
	"context"
	"errors"
	"testing"

	"riego/internal/models"
	"riego/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(nil)

	user := &models.User{Username: " agricultor ", Email: "Agricultor@Example.com", IsActive: true}
	require.NoError(t, user.SetPassword("riego-seguro"))
	require.NoError(t, repo.Create(ctx, db, user))
	assert.Equal(t, "agricultor", user.Username)
	assert.Equal(t, "agricultor@example.com", user.Email)

	t.Run("lookups", func(t *testing.T) {
		byName, err := repo.GetByUsername(ctx, db, "agricultor")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byName.ID)
		assert.True(t, byName.CheckPassword("riego-seguro"))

		byEmail, err := repo.GetByEmail(ctx, db, " AGRICULTOR@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		byID, err := repo.GetByID(ctx, db, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "agricultor", byID.Username)
	})

	t.Run("exists", func(t *testing.T) {
		exists, err := repo.UsernameExists(ctx, db, "agricultor")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.EmailExists(ctx, db, "otro@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, user.SetPassword("nueva-clave-1"))
		require.NoError(t, repo.Update(ctx, db, user))

		loaded, err := repo.FindByID(ctx, db, user.ID)
		require.NoError(t, err)
		assert.True(t, loaded.CheckPassword("nueva-clave-1"))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, db, "nadie")
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}
