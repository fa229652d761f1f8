package services

import (
	"context"
	"fmt"

	"github.com/ieraasyl/FavoritesService/internal/models"
	"github.com/rs/zerolog/log"
)

// FavoritesStore is the persistence the favorites flow needs. SQLDB
// implements it.
type FavoritesStore interface {
	AddFavorite(ctx context.Context, userID, songID string) error
	RemoveFavorite(ctx context.Context, userID, songID string) error
	ListFavoriteSongIDs(ctx context.Context, userID string) ([]string, error)
}

// SongCatalog is the read-only view of the song catalog.
type SongCatalog interface {
	Songs() []models.Song
	Contains(id string) bool
}

// FavoritesService joins the catalog with a user's favorites and applies
// favorite toggles.
type FavoritesService struct {
	catalog SongCatalog
	store   FavoritesStore
}

// NewFavoritesService creates a favorites service.
func NewFavoritesService(catalog SongCatalog, store FavoritesStore) *FavoritesService {
	return &FavoritesService{catalog: catalog, store: store}
}

// ListSongs returns every catalog song in catalog order, each flagged with
// whether userID has favorited it. Store failures wrap ErrPersistence.
func (s *FavoritesService) ListSongs(ctx context.Context, userID string) ([]models.SongView, error) {
	ids, err := s.store.ListFavoriteSongIDs(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list favorites")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	favorites := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		favorites[id] = struct{}{}
	}

	songs := s.catalog.Songs()
	views := make([]models.SongView, 0, len(songs))
	for _, song := range songs {
		_, fav := favorites[song.ID]
		views = append(views, models.SongView{Song: song, IsFavorite: fav})
	}

	return views, nil
}

// SetFavorite makes the membership of (userID, songID) match favorite.
// Both directions are idempotent. An id outside the catalog returns
// ErrInvalidSongID before the store is touched.
//
// Example:
//
//	err := favoritesSvc.SetFavorite(ctx, session.User.ID, "42", true)
//	if errors.Is(err, services.ErrInvalidSongID) {
//	    // 400
//	}
func (s *FavoritesService) SetFavorite(ctx context.Context, userID, songID string, favorite bool) error {
	if !s.catalog.Contains(songID) {
		return fmt.Errorf("%w: %q", ErrInvalidSongID, songID)
	}

	var err error
	if favorite {
		err = s.store.AddFavorite(ctx, userID, songID)
	} else {
		err = s.store.RemoveFavorite(ctx, userID, songID)
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("song_id", songID).
			Bool("favorite", favorite).
			Msg("Failed to update favorite")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Debug().
		Str("user_id", userID).
		Str("song_id", songID).
		Bool("favorite", favorite).
		Msg("Favorite updated")

	return nil
}
