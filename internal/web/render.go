// Package web renders the server-side HTML pages.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/pokedex/internal/models"
)

//go:embed templates
var templateFS embed.FS

var pages = []string{
	"index.html",
	"pokemon_detail.html",
	"profile.html",
	"signup.html",
	"login.html",
	"errors/404.html",
	"errors/500.html",
}

// View is the data passed to every page template.
type View struct {
	Title      string
	User       *models.User
	Flashes    []Flash
	SearchTerm string
	Year       int
	Data       any
}

// Renderer executes page templates wrapped in the shared layout.
type Renderer struct {
	pages       map[string]*template.Template
	log         *zap.Logger
	currentUser func(context.Context) *models.User
}

func NewRenderer(log *zap.Logger, currentUser func(context.Context) *models.User) (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: map[string]*template.Template{}, log: log, currentUser: currentUser}
	for _, p := range pages {
		t, err := template.New("base.html").Funcs(funcs).ParseFS(sub, "base.html", p)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[p] = t
	}
	return r, nil
}

var funcs = template.FuncMap{
	"capitalize": models.Capitalize,
	"stat": func(v *int32) string {
		if v == nil {
			return "—"
		}
		return strconv.Itoa(int(*v))
	},
	"text": func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	},
	// Height is stored in decimetres and weight in hectograms.
	"tenths": func(v *int32) string {
		if v == nil {
			return "—"
		}
		return strconv.FormatFloat(float64(*v)/10, 'f', 1, 64)
	},
}

// Render writes page with the given status. Template errors become a 500.
func (rr *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	t, ok := rr.pages[page]
	if !ok {
		rr.ServerError(w, r, fmt.Errorf("unknown template %q", page))
		return
	}

	view := View{
		Title:      title,
		User:       rr.currentUser(r.Context()),
		Flashes:    PopFlashes(w, r),
		SearchTerm: r.URL.Query().Get("search_term"),
		Year:       time.Now().UTC().Year(),
		Data:       data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", view); err != nil {
		rr.log.Error("render template", zap.String("page", page), zap.Error(err))
		if page != "errors/500.html" {
			rr.ServerError(w, r, err)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (rr *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rr.Render(w, r, http.StatusNotFound, "errors/404.html", "Page Not Found", nil)
}

// ServerError logs err and renders a generic failure page that never
// exposes internal detail.
func (rr *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	rr.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	rr.Render(w, r, http.StatusInternalServerError, "errors/500.html", "Something Went Wrong", nil)
}
