package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ieraasyl/FavoritesService/internal/middleware"
)

// RequestTimeout bounds each handler through the router's context deadline.
// WriteTimeout is for http.Server and stays above it, so a timed out request
// still gets its 503 body out before the connection is cut.
const (
	RequestTimeout = 10 * time.Second
	WriteTimeout   = RequestTimeout + 5*time.Second
)

// Deps bundles everything NewRouter wires together.
type Deps struct {
	Auth     *AuthHandler
	Pages    *PageHandler
	Songs    *SongsHandler
	Health   *HealthHandler
	Sessions middleware.SessionResolver

	AllowedOrigins []string
	IsProduction   bool
}

// NewRouter builds the HTTP route table.
//
// Routes:
//
//	GET  /                      home page (browser session required)
//	GET  /login                 login page
//	GET  /auth/twitch           start OAuth
//	GET  /auth/twitch/callback  finish OAuth
//	GET  /logout                end session
//	GET  /songs                 catalog with favorite flags (API session required)
//	POST /favorite              set favorite state (API session required)
//	GET  /health, /ready        probes
//	GET  /metrics               Prometheus
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(d.IsProduction))
	r.Use(middleware.CORS(d.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(RequestTimeout))

	r.Get("/health", d.Health.Health)
	r.Get("/ready", d.Health.Ready)
	r.Handle("/metrics", middleware.MetricsHandler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(d.Sessions))

		r.Get("/login", d.Pages.Login)
		r.Get("/logout", d.Auth.Logout)

		r.Get("/auth/twitch", d.Auth.ProviderLogin)
		r.Get("/auth/twitch/callback", d.Auth.ProviderCallback)

		r.With(middleware.RequireUser()).Get("/", d.Pages.Home)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIUser())
			r.Get("/songs", d.Songs.ListSongs)
			r.Post("/favorite", d.Songs.Favorite)
		})
	})

	return r
}
