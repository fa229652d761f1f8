package database_test

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ieraasyl/FavoritesService/internal/database"
	"github.com/ieraasyl/FavoritesService/internal/testutil"
	"github.com/ieraasyl/FavoritesService/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLDB_InvalidURL(t *testing.T) {
	_, err := database.NewSQLDB(&config.DatabaseConfig{URL: "mysql://localhost/db"})
	assert.Error(t, err)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := testutil.NewTestSQLDB(t)

	require.NoError(t, db.RunMigrations(context.Background()))
	require.NoError(t, db.RunMigrations(context.Background()))
}

func TestUpsertUser(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts new user", func(t *testing.T) {
		db := testutil.NewTestSQLDB(t)

		user, err := db.UpsertUser(ctx, "u1", "login1", "Display One")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "login1", user.Login)
		assert.Equal(t, "Display One", user.DisplayName)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("existing user is left unchanged", func(t *testing.T) {
		db := testutil.NewTestSQLDB(t)

		first, err := db.UpsertUser(ctx, "u1", "login1", "Display One")
		require.NoError(t, err)

		second, err := db.UpsertUser(ctx, "u1", "renamed", "Renamed")
		require.NoError(t, err)
		assert.Equal(t, first.Login, second.Login)
		assert.Equal(t, first.DisplayName, second.DisplayName)
	})
}

func TestGetUser_NotFound(t *testing.T) {
	db := testutil.NewTestSQLDB(t)

	_, err := db.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *database.SQLDB {
		db := testutil.NewTestSQLDB(t)
		_, err := db.UpsertUser(ctx, "u1", "one", "One")
		require.NoError(t, err)
		_, err = db.UpsertUser(ctx, "u2", "two", "Two")
		require.NoError(t, err)
		return db
	}

	t.Run("add then list", func(t *testing.T) {
		db := setup(t)

		require.NoError(t, db.AddFavorite(ctx, "u1", "42"))
		require.NoError(t, db.AddFavorite(ctx, "u1", "7"))

		ids, err := db.ListFavoriteSongIDs(ctx, "u1")
		require.NoError(t, err)
		sort.Strings(ids)
		assert.Equal(t, []string{"42", "7"}, ids)
	})

	t.Run("add is idempotent", func(t *testing.T) {
		db := setup(t)

		require.NoError(t, db.AddFavorite(ctx, "u1", "42"))
		require.NoError(t, db.AddFavorite(ctx, "u1", "42"))

		ids, err := db.ListFavoriteSongIDs(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"42"}, ids)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		db := setup(t)

		require.NoError(t, db.AddFavorite(ctx, "u1", "42"))
		require.NoError(t, db.RemoveFavorite(ctx, "u1", "42"))
		require.NoError(t, db.RemoveFavorite(ctx, "u1", "42"))

		ok, err := db.IsFavorite(ctx, "u1", "42")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("users are isolated", func(t *testing.T) {
		db := setup(t)

		require.NoError(t, db.AddFavorite(ctx, "u1", "42"))

		ok, err := db.IsFavorite(ctx, "u2", "42")
		require.NoError(t, err)
		assert.False(t, ok)

		ids, err := db.ListFavoriteSongIDs(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, ids)

		ok, err = db.IsFavorite(ctx, "u1", "42")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown user is rejected", func(t *testing.T) {
		db := setup(t)

		assert.Error(t, db.AddFavorite(ctx, "ghost", "42"))
	})
}

func TestForeignKeysOnNewConnection(t *testing.T) {
	ctx := context.Background()
	cfg := &config.DatabaseConfig{URL: "sqlite://" + filepath.Join(t.TempDir(), "favorites.db")}

	first, err := database.NewSQLDB(cfg)
	require.NoError(t, err)
	require.NoError(t, first.RunMigrations(ctx))
	require.NoError(t, first.Close())

	reopened, err := database.NewSQLDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	assert.Error(t, reopened.AddFavorite(ctx, "ghost", "42"))

	_, err = reopened.UpsertUser(ctx, "u1", "u1", "U1")
	require.NoError(t, err)
	assert.NoError(t, reopened.AddFavorite(ctx, "u1", "42"))
}

func TestPing(t *testing.T) {
	db := testutil.NewTestSQLDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}
