// Package testutil provides common testing utilities, fixtures, and helpers
// for use across all test files in the FavoritesService project.
package testutil

import (
	"testing"
	"time"

	"github.com/ieraasyl/FavoritesService/internal/catalog"
	"github.com/ieraasyl/FavoritesService/internal/models"
)

// TestUser creates a test user with default values
func TestUser() *models.User {
	return &models.User{
		ID:          "141981764",
		Login:       "twitchdev",
		DisplayName: "TwitchDev",
		CreatedAt:   time.Now(),
	}
}

// TestUserWithID creates a test user with a specific provider id
func TestUserWithID(id string) *models.User {
	user := TestUser()
	user.ID = id
	user.Login = "user" + id
	user.DisplayName = "User " + id
	return user
}

// TestSongs returns a small catalog fixture. Song "42" is always present.
func TestSongs() []models.Song {
	return []models.Song{
		{ID: "1", Name: "First Light", Artist: "Aurora Lane", Album: "Dawn", Year: "2019", Genre: "Pop", Vocal: "Female", URL: "https://example.com/1"},
		{ID: "42", Name: "Test Song", Artist: "Deep Thought", Album: "Guide", Year: "1979", Genre: "Rock", Vocal: "Male", URL: "https://example.com/42"},
		{ID: "7", Name: "Seventh Wave", Artist: "Tidal", AlbumArtist: "Tidal", Album: "Depths", Year: "2005", Genre: "Electronic", Vocal: "None", URL: "https://example.com/7"},
	}
}

// TestCatalog builds a catalog from TestSongs.
func TestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.New(TestSongs())
	if err != nil {
		t.Fatalf("Failed to build test catalog: %v", err)
	}
	return c
}

// TestSession creates a test session for user
func TestSession(user *models.User) *models.Session {
	return &models.Session{
		ID:         "3f1c2d6e-9a4b-4c8e-8f57-0d2b6a1e9c34",
		User:       *user,
		DeviceInfo: "Chrome 120 · Windows 10 · Desktop",
		IPAddress:  IPAddresses.Public,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
}

// BoolPtr returns a pointer to the given bool
func BoolPtr(b bool) *bool {
	return &b
}

// UserAgents provides common user agent strings for testing
var UserAgents = struct {
	Chrome       string
	Safari       string
	Firefox      string
	MobileSafari string
	Unknown      string
}{
	Chrome:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	Safari:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	Firefox:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	MobileSafari: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	Unknown:      "",
}

// IPAddresses provides test IP addresses
var IPAddresses = struct {
	Public    string
	Private   string
	Localhost string
}{
	Public:    "203.0.113.42",
	Private:   "192.168.1.100",
	Localhost: "127.0.0.1",
}
