// Package utils provides common utility functions for HTTP response handling,
// request ID management, client IP extraction, and cookie operations. JSON
// error responses carry a machine-readable code and the request ID for
// tracing.
package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// requestIDKey is the context key for request ID
const requestIDKey contextKey = "request_id"

// Error codes returned in ErrorResponse.Code.
const (
	CodeUnauthorized     = "unauthorized"
	CodeInvalidRequest   = "invalid_request"
	CodeInvalidSongID    = "invalid_song_id"
	CodePersistenceError = "persistence_error"
	CodeInternalError    = "internal_error"
)

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if the context is nil or no request ID is present.
//
// Example:
//
//	requestID := utils.GetRequestID(r.Context())
//	if requestID != "" {
//	    log.Info().Str("request_id", requestID).Msg("Processing request")
//	}
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID stores requestID in ctx. middleware.Logger calls it once
// per request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ErrorResponse represents a standard error response structure.
//
// JSON example:
//
//	{"error":"Bad Request","code":"invalid_song_id","message":"song \"99\" is not in the catalog","request_id":"..."}
type ErrorResponse struct {
	Error     string `json:"error"`                // HTTP status text (e.g., "Bad Request")
	Code      string `json:"code"`                 // Machine-readable error code
	Message   string `json:"message,omitempty"`    // Detailed error message
	RequestID string `json:"request_id,omitempty"` // Request ID for distributed tracing
}

// RespondWithError sends a JSON error response with automatic request ID extraction.
//
// Example:
//
//	utils.RespondWithError(w, r, http.StatusBadRequest, utils.CodeInvalidSongID, "Unknown song")
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	requestID := GetRequestID(r.Context())

	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Code:      code,
		Message:   message,
		RequestID: requestID,
	}

	writeJSON(w, statusCode, response, requestID)
}

// RespondWithJSON sends a JSON response with the given status code and data.
//
// Example:
//
//	utils.RespondWithJSON(w, r, http.StatusOK, models.SongsResponse{Songs: songs})
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	writeJSON(w, statusCode, data, GetRequestID(r.Context()))
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Msg("Failed to encode JSON response")
	}
}

// SetAuthCookie sets an HttpOnly, SameSite=Lax cookie that expires at
// expires. Secure should be true in production.
//
//	utils.SetAuthCookie(w, "session_token", token, expiresAt, cfg.Server.IsProduction())
func SetAuthCookie(w http.ResponseWriter, name, value string, expires time.Time, secure bool) {
	c := authCookie(name, value, secure)
	c.Expires = expires
	http.SetCookie(w, c)
}

// SetAuthCookieWithMaxAge is SetAuthCookie with a lifetime in seconds.
// Used for the OAuth state cookie.
func SetAuthCookieWithMaxAge(w http.ResponseWriter, name, value string, maxAge int, secure bool) {
	c := authCookie(name, value, secure)
	c.MaxAge = maxAge
	http.SetCookie(w, c)
}

// ClearAuthCookie tells the browser to drop the named cookie.
func ClearAuthCookie(w http.ResponseWriter, name string, secure bool) {
	c := authCookie(name, "", secure)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// authCookie sends with the provider's top-level redirect (Lax) and stays
// out of reach of page scripts (HttpOnly).
func authCookie(name, value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
