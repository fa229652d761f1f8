package handlers

import (
	"errors"
	"net/http"

	"github.com/ieraasyl/FavoritesService/internal/middleware"
	"github.com/ieraasyl/FavoritesService/internal/views"
	"github.com/ieraasyl/FavoritesService/pkg/utils"
	"github.com/rs/zerolog/log"
)

// Renderer renders a named HTML page. views.Renderer implements it.
type Renderer interface {
	Render(w http.ResponseWriter, page string, data interface{}) error
}

// PageHandler serves the HTML pages.
type PageHandler struct {
	renderer Renderer
}

// NewPageHandler creates a page handler.
func NewPageHandler(renderer Renderer) *PageHandler {
	return &PageHandler{renderer: renderer}
}

// Home renders the home page for the signed-in user. Mounted behind
// middleware.RequireUser.
//
// Route: GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.render(w, r, views.PageHome, views.HomeData{DisplayName: session.User.DisplayName})
}

// Login serves the login page, or redirects to / when already signed in.
//
// Route: GET /login
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSession(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.render(w, r, views.PageLogin, nil)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page string, data interface{}) {
	if err := h.renderer.Render(w, page, data); err != nil {
		log.Error().
			Err(err).
			Str("request_id", utils.GetRequestID(r.Context())).
			Str("page", page).
			Msg("Failed to render page")
		if !errors.Is(err, views.ErrResponseStarted) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
