package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ieraasyl/FavoritesService/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFavoritesStore is a mock implementation of FavoritesStore
type MockFavoritesStore struct {
	mock.Mock
}

func (m *MockFavoritesStore) AddFavorite(ctx context.Context, userID, songID string) error {
	return m.Called(ctx, userID, songID).Error(0)
}

func (m *MockFavoritesStore) RemoveFavorite(ctx context.Context, userID, songID string) error {
	return m.Called(ctx, userID, songID).Error(0)
}

func (m *MockFavoritesStore) ListFavoriteSongIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func setupFavoritesService(t *testing.T) (*FavoritesService, context.Context) {
	t.Helper()

	db := testutil.NewTestSQLDB(t)
	ctx := context.Background()
	for _, id := range []string{"u1", "u2"} {
		user := testutil.TestUserWithID(id)
		_, err := db.UpsertUser(ctx, user.ID, user.Login, user.DisplayName)
		require.NoError(t, err)
	}

	return NewFavoritesService(testutil.TestCatalog(t), db), ctx
}

func favoriteFlags(t *testing.T, svc *FavoritesService, ctx context.Context, userID string) map[string]bool {
	t.Helper()

	views, err := svc.ListSongs(ctx, userID)
	require.NoError(t, err)

	flags := make(map[string]bool, len(views))
	for _, v := range views {
		flags[v.ID] = v.IsFavorite
	}
	return flags
}

func TestListSongs(t *testing.T) {
	t.Run("returns whole catalog in order", func(t *testing.T) {
		svc, ctx := setupFavoritesService(t)

		views, err := svc.ListSongs(ctx, "u1")
		require.NoError(t, err)

		songs := testutil.TestSongs()
		require.Len(t, views, len(songs))
		for i, v := range views {
			assert.Equal(t, songs[i], v.Song)
			assert.False(t, v.IsFavorite)
		}
	})

	t.Run("ignores stored ids that left the catalog", func(t *testing.T) {
		store := new(MockFavoritesStore)
		store.On("ListFavoriteSongIDs", mock.Anything, "u1").Return([]string{"42", "retired"}, nil)
		svc := NewFavoritesService(testutil.TestCatalog(t), store)

		views, err := svc.ListSongs(context.Background(), "u1")
		require.NoError(t, err)
		assert.Len(t, views, len(testutil.TestSongs()))
		for _, v := range views {
			assert.Equal(t, v.ID == "42", v.IsFavorite)
		}
	})

	t.Run("store failure wraps ErrPersistence", func(t *testing.T) {
		store := new(MockFavoritesStore)
		store.On("ListFavoriteSongIDs", mock.Anything, "u1").Return(nil, errors.New("db down"))
		svc := NewFavoritesService(testutil.TestCatalog(t), store)

		_, err := svc.ListSongs(context.Background(), "u1")
		assert.ErrorIs(t, err, ErrPersistence)
	})
}

func TestSetFavorite(t *testing.T) {
	t.Run("membership matches requested state", func(t *testing.T) {
		svc, ctx := setupFavoritesService(t)

		for _, song := range testutil.TestSongs() {
			require.NoError(t, svc.SetFavorite(ctx, "u1", song.ID, true))
			assert.True(t, favoriteFlags(t, svc, ctx, "u1")[song.ID])

			require.NoError(t, svc.SetFavorite(ctx, "u1", song.ID, false))
			assert.False(t, favoriteFlags(t, svc, ctx, "u1")[song.ID])
		}
	})

	t.Run("repeating a call does not change the result", func(t *testing.T) {
		svc, ctx := setupFavoritesService(t)

		require.NoError(t, svc.SetFavorite(ctx, "u1", "42", true))
		once := favoriteFlags(t, svc, ctx, "u1")
		require.NoError(t, svc.SetFavorite(ctx, "u1", "42", true))
		assert.Equal(t, once, favoriteFlags(t, svc, ctx, "u1"))

		require.NoError(t, svc.SetFavorite(ctx, "u1", "42", false))
		require.NoError(t, svc.SetFavorite(ctx, "u1", "42", false))
		assert.False(t, favoriteFlags(t, svc, ctx, "u1")["42"])
	})

	t.Run("users do not affect each other", func(t *testing.T) {
		svc, ctx := setupFavoritesService(t)

		require.NoError(t, svc.SetFavorite(ctx, "u1", "42", true))
		assert.True(t, favoriteFlags(t, svc, ctx, "u1")["42"])
		assert.False(t, favoriteFlags(t, svc, ctx, "u2")["42"])

		require.NoError(t, svc.SetFavorite(ctx, "u2", "42", true))
		require.NoError(t, svc.SetFavorite(ctx, "u1", "42", false))
		assert.False(t, favoriteFlags(t, svc, ctx, "u1")["42"])
		assert.True(t, favoriteFlags(t, svc, ctx, "u2")["42"])
	})

	t.Run("unknown song never reaches the store", func(t *testing.T) {
		store := new(MockFavoritesStore)
		svc := NewFavoritesService(testutil.TestCatalog(t), store)

		err := svc.SetFavorite(context.Background(), "u1", "does-not-exist", true)
		assert.ErrorIs(t, err, ErrInvalidSongID)

		err = svc.SetFavorite(context.Background(), "u1", "", false)
		assert.ErrorIs(t, err, ErrInvalidSongID)

		store.AssertNotCalled(t, "AddFavorite", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "RemoveFavorite", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure wraps ErrPersistence", func(t *testing.T) {
		store := new(MockFavoritesStore)
		store.On("AddFavorite", mock.Anything, "u1", "42").Return(errors.New("db down"))
		store.On("RemoveFavorite", mock.Anything, "u1", "42").Return(errors.New("db down"))
		svc := NewFavoritesService(testutil.TestCatalog(t), store)

		assert.ErrorIs(t, svc.SetFavorite(context.Background(), "u1", "42", true), ErrPersistence)
		assert.ErrorIs(t, svc.SetFavorite(context.Background(), "u1", "42", false), ErrPersistence)
		store.AssertExpectations(t)
	})
}
