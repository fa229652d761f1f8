// Package models defines the core domain models for the application.
// These models represent the users, sessions, songs and favorites passed
// between the storage, service and HTTP layers.
package models

import "time"

// User represents an account authenticated through the identity provider.
// The ID is the provider's opaque user id and is the identity key.
//
// JSON example:
//
//	{
//	  "id": "141981764",
//	  "login": "twitchdev",
//	  "display_name": "TwitchDev",
//	  "created_at": "2024-01-15T10:30:00Z"
//	}
type User struct {
	ID          string    `json:"id" db:"id"`                     // Provider user id (unique)
	Login       string    `json:"login" db:"login"`               // Provider login name
	DisplayName string    `json:"display_name" db:"display_name"` // Name shown on the home page
	CreatedAt   time.Time `json:"created_at" db:"created_at"`     // First successful login
}

// Session represents a server-side session record. The client holds only a
// signed token naming the session ID; everything else stays in the store.
type Session struct {
	ID         string    `json:"id"`
	User       User      `json:"user"`
	DeviceInfo string    `json:"device_info"` // Parsed User-Agent from login
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
