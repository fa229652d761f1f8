// Package middleware provides HTTP middleware for session loading, access
// gating, request logging, security headers, CORS, and Prometheus metrics.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/ieraasyl/FavoritesService/internal/models"
	"github.com/ieraasyl/FavoritesService/internal/services"
	"github.com/ieraasyl/FavoritesService/pkg/utils"
	"github.com/rs/zerolog/log"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session_token"

type contextKey string

// SessionKey is the context key for the resolved *models.Session.
const SessionKey contextKey = "session"

// SessionResolver resolves a session token to its session record.
// services.SessionService implements it.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.Session, error)
}

// LoadSession resolves the session cookie, if any, and stores the session
// in the request context. It never rejects a request: anonymous requests
// continue without a session and the gates below decide what to do.
//
// Store failures (as opposed to a missing or invalid session) are logged
// and the request continues anonymous.
//
// Usage:
//
//	r.Use(middleware.LoadSession(sessionService))
//	r.With(middleware.RequireUser()).Get("/", pageHandler.Home)
func LoadSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := resolver.ResolveSession(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, services.ErrSessionNotFound) {
					log.Error().
						Err(err).
						Str("request_id", utils.GetRequestID(r.Context())).
						Msg("Failed to resolve session")
				} else {
					log.Debug().Err(err).Msg("Ignoring invalid session cookie")
				}
				next.ServeHTTP(w, r)
				return
			}

			log.Debug().
				Str("user_id", session.User.ID).
				Str("session_id", session.ID).
				Msg("Session loaded")

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireUser gates browser routes. Requests without a session are
// redirected to /login.
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetSession(r.Context()); !ok {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIUser gates JSON API routes. Requests without a session get
// 401 with an "unauthorized" error body and no side effects.
func RequireAPIUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetSession(r.Context()); !ok {
				log.Warn().
					Str("request_id", utils.GetRequestID(r.Context())).
					Str("path", r.URL.Path).
					Msg("Rejected unauthenticated API request")
				utils.RespondWithError(w, r, http.StatusUnauthorized, utils.CodeUnauthorized, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSession returns the session stored by LoadSession.
//
// Example:
//
//	session, ok := middleware.GetSession(r.Context())
//	if !ok {
//	    // anonymous
//	}
func GetSession(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*models.Session)
	return session, ok && session != nil
}

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
