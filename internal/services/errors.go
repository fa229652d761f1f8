package services

import "errors"

// Error taxonomy shared by services and handlers. Services wrap these with
// context (fmt.Errorf("...: %w", ErrX)); handlers classify with errors.Is.
var (
	// ErrUnauthorized means the request carries no usable session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrExchange means the provider rejected the authorization code or the
	// token endpoint could not be reached.
	ErrExchange = errors.New("oauth code exchange failed")

	// ErrProfileFetch means the provider profile could not be retrieved for
	// an access token.
	ErrProfileFetch = errors.New("oauth profile fetch failed")

	// ErrInvalidSongID means the song id is not in the loaded catalog.
	ErrInvalidSongID = errors.New("invalid song id")

	// ErrPersistence means a storage operation failed.
	ErrPersistence = errors.New("persistence failure")

	// ErrSessionNotFound means the session token is invalid, expired, or no
	// longer backed by a stored record.
	ErrSessionNotFound = errors.New("session not found")
)
