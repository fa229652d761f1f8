// Package views renders the server-side HTML pages. Templates are embedded
// into the binary and parsed once at startup.
package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrResponseStarted marks a Render failure that happened after the status
// line was sent. The caller can only log it.
var ErrResponseStarted = errors.New("response already started")

// Page names.
const (
	PageLogin = "login.html"
	PageHome  = "home.html"
)

// HomeData is the data for the home page.
type HomeData struct {
	DisplayName string
}

// Renderer holds the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every embedded page.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageLogin, PageHome} {
		tmpl, err := template.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render executes page into a buffer and writes it with status 200. Nothing
// is written if execution fails, so the caller can still answer 500. Errors
// from the final write wrap ErrResponseStarted.
func (r *Renderer) Render(w http.ResponseWriter, page string, data interface{}) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s: %w: %w", page, ErrResponseStarted, err)
	}
	return nil
}
