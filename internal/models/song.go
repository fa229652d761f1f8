package models

// Song is an immutable catalog record. Songs are loaded once at startup and
// never mutated afterwards.
type Song struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	AlbumArtist string `json:"albumArtist"`
	Album       string `json:"album"`
	Year        string `json:"year"`
	Genre       string `json:"genre"`
	Vocal       string `json:"vocal"`
	URL         string `json:"url"`
}

// SongView is a catalog song joined with the current user's favorite flag.
// The embedded Song fields are flattened into the JSON object.
type SongView struct {
	Song
	IsFavorite bool `json:"isFavorite"`
}

// SongsResponse is the body of GET /songs.
type SongsResponse struct {
	Songs []SongView `json:"songs"`
}

// FavoriteRequest is the body of POST /favorite. Favorite is a pointer so a
// missing field can be told apart from false.
type FavoriteRequest struct {
	SongID   string `json:"songId"`
	Favorite *bool  `json:"favorite"`
}

// FavoriteResponse is the success body of POST /favorite.
type FavoriteResponse struct {
	Success  bool   `json:"success"`
	SongID   string `json:"songId"`
	Favorite bool   `json:"favorite"`
}
