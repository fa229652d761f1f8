package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ieraasyl/FavoritesService/internal/middleware"
	"github.com/ieraasyl/FavoritesService/internal/models"
	"github.com/ieraasyl/FavoritesService/internal/services"
	"github.com/ieraasyl/FavoritesService/pkg/utils"
	"github.com/rs/zerolog/log"
)

// maxFavoriteBody caps the POST /favorite request body.
const maxFavoriteBody = 4 << 10

// FavoritesService is the favorites flow used by SongsHandler.
type FavoritesService interface {
	ListSongs(ctx context.Context, userID string) ([]models.SongView, error)
	SetFavorite(ctx context.Context, userID, songID string, favorite bool) error
}

// SongsHandler serves the song list and the favorite toggle. Both routes
// are mounted behind middleware.RequireAPIUser.
type SongsHandler struct {
	favorites FavoritesService
}

// NewSongsHandler creates a songs handler.
func NewSongsHandler(favorites FavoritesService) *SongsHandler {
	return &SongsHandler{favorites: favorites}
}

// ListSongs returns the catalog with the caller's favorite flags.
//
// Route: GET /songs
//
// Response:
//
//	{"songs":[{"id":"42","name":"Test Song",...,"isFavorite":false}]}
func (h *SongsHandler) ListSongs(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, utils.CodeUnauthorized, "Authentication required")
		return
	}

	songs, err := h.favorites.ListSongs(r.Context(), session.User.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, models.SongsResponse{Songs: songs})
}

// Favorite sets the caller's favorite state for one song.
//
// Route: POST /favorite
//
// Request:
//
//	{"songId":"42","favorite":true}
//
// Responses:
//   - 200 {"success":true,"songId":"42","favorite":true}
//   - 400 invalid_request: body is not JSON, songId is empty, or favorite is missing
//   - 400 invalid_song_id: songId is not in the catalog
//   - 500 persistence_error: the store failed
func (h *SongsHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, utils.CodeUnauthorized, "Authentication required")
		return
	}

	req, err := decodeFavoriteRequest(w, r)
	if err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, utils.CodeInvalidRequest, err.Error())
		return
	}

	if err := h.favorites.SetFavorite(r.Context(), session.User.ID, req.SongID, *req.Favorite); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	middleware.IncrementFavoriteToggles(*req.Favorite)

	utils.RespondWithJSON(w, r, http.StatusOK, models.FavoriteResponse{
		Success:  true,
		SongID:   req.SongID,
		Favorite: *req.Favorite,
	})
}

func decodeFavoriteRequest(w http.ResponseWriter, r *http.Request) (*models.FavoriteRequest, error) {
	var req models.FavoriteRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFavoriteBody)).Decode(&req); err != nil {
		return nil, errors.New("request body must be a JSON object with songId and favorite")
	}
	if req.SongID == "" {
		return nil, errors.New("songId is required")
	}
	if req.Favorite == nil {
		return nil, errors.New("favorite is required")
	}

	return &req, nil
}

func (h *SongsHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidSongID):
		utils.RespondWithError(w, r, http.StatusBadRequest, utils.CodeInvalidSongID, "Song is not in the catalog")
	default:
		log.Error().
			Err(err).
			Str("request_id", utils.GetRequestID(r.Context())).
			Msg("Favorites operation failed")
		utils.RespondWithError(w, r, http.StatusInternalServerError, utils.CodePersistenceError, "Could not access favorites")
	}
}
