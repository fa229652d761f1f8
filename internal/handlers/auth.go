// Package handlers provides HTTP request handlers for the favorites service.
// Handlers take their collaborators as small interfaces so tests can use
// mocks, and translate service errors into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ieraasyl/FavoritesService/internal/middleware"
	"github.com/ieraasyl/FavoritesService/internal/models"
	"github.com/ieraasyl/FavoritesService/internal/services"
	"github.com/ieraasyl/FavoritesService/pkg/utils"
	"github.com/rs/zerolog/log"
)

const (
	stateCookieName   = "oauth_state"
	stateCookieMaxAge = 600 // seconds
)

// OAuthService is the OAuth flow used by AuthHandler.
type OAuthService interface {
	AuthURL(state string) string
	AuthenticateUser(ctx context.Context, code string) (*models.User, error)
}

// SessionManager creates and destroys sessions for AuthHandler.
type SessionManager interface {
	CreateSession(ctx context.Context, user *models.User, deviceInfo, ipAddress string) (string, time.Time, error)
	DestroySession(ctx context.Context, token string) error
}

// AuthHandler handles the login redirect, the OAuth callback, and logout.
type AuthHandler struct {
	oauthService   OAuthService
	sessionService SessionManager
	isProduction   bool // marks cookies Secure
}

// NewAuthHandler creates a new authentication handler.
//
// Example:
//
//	authHandler := handlers.NewAuthHandler(oauthService, sessionService, cfg.Server.IsProduction())
func NewAuthHandler(oauthService OAuthService, sessionService SessionManager, isProduction bool) *AuthHandler {
	return &AuthHandler{
		oauthService:   oauthService,
		sessionService: sessionService,
		isProduction:   isProduction,
	}
}

// ProviderLogin starts the OAuth flow.
//
// A random state is stored in the oauth_state cookie (10 minutes) and sent
// to the provider, then the browser is redirected to the authorize URL.
//
// Route: GET /auth/twitch
func (h *AuthHandler) ProviderLogin(w http.ResponseWriter, r *http.Request) {
	state := services.GenerateState()

	utils.SetAuthCookieWithMaxAge(w, stateCookieName, state, stateCookieMaxAge, h.isProduction)

	http.Redirect(w, r, h.oauthService.AuthURL(state), http.StatusTemporaryRedirect)
}

// ProviderCallback completes the OAuth flow.
//
// Flow:
//  1. Verify the state parameter against the oauth_state cookie
//  2. Exchange the code, fetch the profile, and upsert the user
//  3. Create a session and set the session cookie
//  4. Redirect to /
//
// Any failure answers 401 with the plain text "Authentication failed" and
// sets no session cookie. The user has to start over from /login.
//
// Route: GET /auth/twitch/callback?code=...&state=...
func (h *AuthHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || query.Get("state") != stateCookie.Value {
		h.authFailed(w, r, "invalid_state", errors.New("missing or mismatched oauth state"))
		return
	}

	utils.ClearAuthCookie(w, stateCookieName, h.isProduction)

	if providerErr := query.Get("error"); providerErr != "" {
		h.authFailed(w, r, "denied", errors.New(providerErr))
		return
	}

	user, err := h.oauthService.AuthenticateUser(r.Context(), query.Get("code"))
	if err != nil {
		h.authFailed(w, r, authFailureResult(err), err)
		return
	}

	token, expiresAt, err := h.sessionService.CreateSession(
		r.Context(),
		user,
		services.ExtractDeviceInfo(r.UserAgent()),
		utils.ExtractClientIP(r),
	)
	if err != nil {
		h.authFailed(w, r, "session_failed", err)
		return
	}

	utils.SetAuthCookie(w, middleware.SessionCookieName, token, expiresAt, h.isProduction)
	middleware.IncrementAuthAttempts("success")

	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout destroys the current session, clears the session cookie, and
// redirects to /login. It works with or without a valid session.
//
// Route: GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessionService.DestroySession(r.Context(), cookie.Value); err != nil {
			log.Warn().
				Err(err).
				Str("request_id", utils.GetRequestID(r.Context())).
				Msg("Failed to destroy session")
		}
	}

	utils.ClearAuthCookie(w, middleware.SessionCookieName, h.isProduction)

	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) authFailed(w http.ResponseWriter, r *http.Request, result string, err error) {
	middleware.IncrementAuthAttempts(result)

	log.Warn().
		Err(err).
		Str("request_id", utils.GetRequestID(r.Context())).
		Str("result", result).
		Msg("Authentication failed")

	http.Error(w, "Authentication failed", http.StatusUnauthorized)
}

func authFailureResult(err error) string {
	switch {
	case errors.Is(err, services.ErrExchange):
		return "exchange_failed"
	case errors.Is(err, services.ErrProfileFetch):
		return "profile_failed"
	case errors.Is(err, services.ErrPersistence):
		return "persistence_failed"
	default:
		return "error"
	}
}
