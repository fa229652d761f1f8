package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ieraasyl/FavoritesService/internal/catalog"
	"github.com/ieraasyl/FavoritesService/internal/database"
	"github.com/ieraasyl/FavoritesService/internal/handlers"
	"github.com/ieraasyl/FavoritesService/internal/services"
	"github.com/ieraasyl/FavoritesService/internal/views"
	"github.com/ieraasyl/FavoritesService/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// sessionBackend is what the session service and the readiness probe need
// from a session store.
type sessionBackend interface {
	services.SessionStore
	handlers.Pinger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Server.IsProduction())

	log.Info().
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("session_store", cfg.Session.Store).
		Msg("Starting favorites service")

	// Load the song catalog; the service cannot run without it
	songs, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load song catalog")
	}

	// Initialize the relational store
	sqlDB, err := database.NewSQLDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer sqlDB.Close()

	if err := sqlDB.RunMigrations(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize the session store
	var sessionStore sessionBackend
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisDB, err := database.NewRedisDB(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisDB.Close()
		sessionStore = redisDB
	default:
		sessionStore = database.NewMemorySessionStore()
	}

	renderer, err := views.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse page templates")
	}

	// Initialize services
	oauthService := services.NewOAuthService(&cfg.OAuth, sqlDB)
	sessionService := services.NewSessionService(sessionStore, &cfg.Session)
	favoritesService := services.NewFavoritesService(songs, sqlDB)

	isProduction := cfg.Server.IsProduction()
	router := handlers.NewRouter(handlers.Deps{
		Auth:           handlers.NewAuthHandler(oauthService, sessionService, isProduction),
		Pages:          handlers.NewPageHandler(renderer),
		Songs:          handlers.NewSongsHandler(favoritesService),
		Health:         handlers.NewHealthHandler(sqlDB, sessionStore, cfg.Session.Store),
		Sessions:       sessionService,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		IsProduction:   isProduction,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: handlers.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped gracefully")
}

// setupLogger writes human-readable logs in development and JSON lines in
// production.
func setupLogger(production bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	level := zerolog.DebugLevel
	if production {
		out = os.Stderr
		level = zerolog.InfoLevel
	}

	log.Logger = log.Output(out)
	zerolog.SetGlobalLevel(level)
}
