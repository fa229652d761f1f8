package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ieraasyl/FavoritesService/pkg/utils"
	"github.com/rs/zerolog/log"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check and readiness probe endpoints.
type HealthHandler struct {
	database     Pinger
	sessions     Pinger
	sessionStore string // "memory" or "redis", used as the readiness key
}

// NewHealthHandler creates a new health check handler.
//
// Example:
//
//	healthHandler := handlers.NewHealthHandler(sqlDB, sessionStore, cfg.Session.Store)
func NewHealthHandler(database, sessions Pinger, sessionStore string) *HealthHandler {
	return &HealthHandler{
		database:     database,
		sessions:     sessions,
		sessionStore: sessionStore,
	}
}

// HealthResponse represents the health check response structure.
type HealthResponse struct {
	Status    string            `json:"status"`             // Overall status: "ok" or "degraded"
	Timestamp time.Time         `json:"timestamp"`          // Current server time
	Services  map[string]string `json:"services,omitempty"` // Individual service health (readiness only)
}

// Health is the liveness probe. It always returns 200 while the process
// can serve requests and checks no dependencies.
//
// Route: GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe. It pings the SQL store and the session
// store with a 5 second budget and answers 503 if either fails.
//
// Route: GET /ready
//
// Response example (degraded):
//
//	{"status":"degraded","timestamp":"...","services":{"database":"unhealthy","redis":"healthy"}}
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]Pinger{
		"database":     h.database,
		h.sessionStore: h.sessions,
	}

	statuses := make(map[string]string, len(checks))
	allHealthy := true

	for name, dep := range checks {
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			log.Error().Err(err).Str("service", name).Msg("Readiness check failed")
			statuses[name] = "unhealthy"
			allHealthy = false
			continue
		}
		statuses[name] = "healthy"
	}

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Services:  statuses,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		response.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	utils.RespondWithJSON(w, r, statusCode, response)
}
