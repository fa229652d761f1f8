package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ieraasyl/FavoritesService/internal/middleware"
	"github.com/ieraasyl/FavoritesService/internal/models"
	"github.com/ieraasyl/FavoritesService/internal/services"
	"github.com/ieraasyl/FavoritesService/internal/testutil"
	"github.com/ieraasyl/FavoritesService/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFavoritesService struct {
	mock.Mock
}

func (m *MockFavoritesService) ListSongs(ctx context.Context, userID string) ([]models.SongView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SongView), args.Error(1)
}

func (m *MockFavoritesService) SetFavorite(ctx context.Context, userID, songID string, favorite bool) error {
	args := m.Called(ctx, userID, songID, favorite)
	return args.Error(0)
}

func setupSongsHandler(t *testing.T) (*SongsHandler, *MockFavoritesService) {
	t.Helper()

	mockFavorites := new(MockFavoritesService)
	return NewSongsHandler(mockFavorites), mockFavorites
}

func withTestSession(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), testutil.TestSession(testutil.TestUser())))
}

func favoriteJSONRequest(t *testing.T, songID string, favorite *bool) *http.Request {
	t.Helper()
	req := testutil.MakeRequest(t, http.MethodPost, "/favorite", models.FavoriteRequest{SongID: songID, Favorite: favorite})
	return withTestSession(req)
}

func favoriteRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/favorite", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return withTestSession(req)
}

func TestListSongs(t *testing.T) {
	t.Run("returns songs with favorite flags", func(t *testing.T) {
		handler, mockFavorites := setupSongsHandler(t)

		songs := testutil.TestSongs()
		views := []models.SongView{
			{Song: songs[0], IsFavorite: false},
			{Song: songs[1], IsFavorite: true},
		}
		mockFavorites.On("ListSongs", mock.Anything, testutil.TestUser().ID).Return(views, nil)

		rec := httptest.NewRecorder()
		handler.ListSongs(rec, withTestSession(httptest.NewRequest(http.MethodGet, "/songs", nil)))

		testutil.AssertStatusCode(t, rec, http.StatusOK)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var response models.SongsResponse
		testutil.ParseJSONResponse(t, rec, &response)
		require.Len(t, response.Songs, 2)
		assert.Equal(t, "1", response.Songs[0].ID)
		assert.False(t, response.Songs[0].IsFavorite)
		assert.Equal(t, "42", response.Songs[1].ID)
		assert.True(t, response.Songs[1].IsFavorite)

		mockFavorites.AssertExpectations(t)
	})

	t.Run("uses the documented field names", func(t *testing.T) {
		handler, mockFavorites := setupSongsHandler(t)

		mockFavorites.On("ListSongs", mock.Anything, mock.Anything).
			Return([]models.SongView{{Song: testutil.TestSongs()[2]}}, nil)

		rec := httptest.NewRecorder()
		handler.ListSongs(rec, withTestSession(httptest.NewRequest(http.MethodGet, "/songs", nil)))

		var raw map[string][]map[string]interface{}
		testutil.ParseJSONResponse(t, rec, &raw)
		require.Len(t, raw["songs"], 1)
		for _, key := range []string{"id", "name", "artist", "albumArtist", "album", "year", "genre", "vocal", "url", "isFavorite"} {
			assert.Contains(t, raw["songs"][0], key)
		}
	})

	t.Run("answers 500 on store failure", func(t *testing.T) {
		handler, mockFavorites := setupSongsHandler(t)

		mockFavorites.On("ListSongs", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: connection refused", services.ErrPersistence))

		rec := httptest.NewRecorder()
		handler.ListSongs(rec, withTestSession(httptest.NewRequest(http.MethodGet, "/songs", nil)))

		testutil.AssertStatusCode(t, rec, http.StatusInternalServerError)

		var response utils.ErrorResponse
		testutil.ParseJSONResponse(t, rec, &response)
		assert.Equal(t, utils.CodePersistenceError, response.Code)
	})

	t.Run("answers 401 without a session", func(t *testing.T) {
		handler, mockFavorites := setupSongsHandler(t)

		rec := httptest.NewRecorder()
		handler.ListSongs(rec, httptest.NewRequest(http.MethodGet, "/songs", nil))

		testutil.AssertStatusCode(t, rec, http.StatusUnauthorized)
		mockFavorites.AssertNotCalled(t, "ListSongs", mock.Anything, mock.Anything)
	})
}

func TestFavorite(t *testing.T) {
	userID := testutil.TestUser().ID

	t.Run("marks a song as favorite", func(t *testing.T) {
		handler, mockFavorites := setupSongsHandler(t)

		mockFavorites.On("SetFavorite", mock.Anything, userID, "42", true).Return(nil)

		rec := httptest.NewRecorder()
		handler.Favorite(rec, favoriteJSONRequest(t, "42", testutil.BoolPtr(true)))

		testutil.AssertStatusCode(t, rec, http.StatusOK)

		var response models.FavoriteResponse
		testutil.ParseJSONResponse(t, rec, &response)
		assert.Equal(t, models.FavoriteResponse{Success: true, SongID: "42", Favorite: true}, response)

		mockFavorites.AssertExpectations(t)
	})

	t.Run("clears a favorite", func(t *testing.T) {
		handler, mockFavorites := setupSongsHandler(t)

		mockFavorites.On("SetFavorite", mock.Anything, userID, "42", false).Return(nil)

		rec := httptest.NewRecorder()
		handler.Favorite(rec, favoriteJSONRequest(t, "42", testutil.BoolPtr(false)))

		testutil.AssertStatusCode(t, rec, http.StatusOK)

		var response models.FavoriteResponse
		testutil.ParseJSONResponse(t, rec, &response)
		assert.True(t, response.Success)
		assert.False(t, response.Favorite)
	})

	t.Run("rejects malformed requests", func(t *testing.T) {
		for name, body := range map[string]string{
			"not json":         `songId=42`,
			"empty body":       ``,
			"missing songId":   `{"favorite":true}`,
			"empty songId":     `{"songId":"","favorite":true}`,
			"missing favorite": `{"songId":"42"}`,
			"numeric songId":   `{"songId":42,"favorite":true}`,
			"string favorite":  `{"songId":"42","favorite":"yes"}`,
		} {
			t.Run(name, func(t *testing.T) {
				handler, mockFavorites := setupSongsHandler(t)

				rec := httptest.NewRecorder()
				handler.Favorite(rec, favoriteRequest(body))

				testutil.AssertStatusCode(t, rec, http.StatusBadRequest)

				var response utils.ErrorResponse
				testutil.ParseJSONResponse(t, rec, &response)
				assert.Equal(t, utils.CodeInvalidRequest, response.Code)

				mockFavorites.AssertNotCalled(t, "SetFavorite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("rejects a null favorite", func(t *testing.T) {
		handler, mockFavorites := setupSongsHandler(t)

		rec := httptest.NewRecorder()
		handler.Favorite(rec, favoriteJSONRequest(t, "42", nil))

		testutil.AssertStatusCode(t, rec, http.StatusBadRequest)
		mockFavorites.AssertNotCalled(t, "SetFavorite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown song ids", func(t *testing.T) {
		handler, mockFavorites := setupSongsHandler(t)

		mockFavorites.On("SetFavorite", mock.Anything, userID, "999", true).
			Return(fmt.Errorf("%w: %q", services.ErrInvalidSongID, "999"))

		rec := httptest.NewRecorder()
		handler.Favorite(rec, favoriteJSONRequest(t, "999", testutil.BoolPtr(true)))

		testutil.AssertStatusCode(t, rec, http.StatusBadRequest)

		var response utils.ErrorResponse
		testutil.ParseJSONResponse(t, rec, &response)
		assert.Equal(t, utils.CodeInvalidSongID, response.Code)
	})

	t.Run("answers 500 on store failure", func(t *testing.T) {
		handler, mockFavorites := setupSongsHandler(t)

		mockFavorites.On("SetFavorite", mock.Anything, userID, "42", true).
			Return(fmt.Errorf("%w: database is locked", services.ErrPersistence))

		rec := httptest.NewRecorder()
		handler.Favorite(rec, favoriteJSONRequest(t, "42", testutil.BoolPtr(true)))

		testutil.AssertStatusCode(t, rec, http.StatusInternalServerError)

		var response utils.ErrorResponse
		testutil.ParseJSONResponse(t, rec, &response)
		assert.Equal(t, utils.CodePersistenceError, response.Code)
	})

	t.Run("answers 401 without a session", func(t *testing.T) {
		handler, mockFavorites := setupSongsHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/favorite", strings.NewReader(`{"songId":"42","favorite":true}`))
		rec := httptest.NewRecorder()

		handler.Favorite(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusUnauthorized)
		mockFavorites.AssertNotCalled(t, "SetFavorite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
