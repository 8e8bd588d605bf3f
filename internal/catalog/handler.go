package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ayush/pokedex/internal/auth"
	"github.com/ayush/pokedex/internal/models"
)

// Views renders HTML pages.
type Views interface {
	Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any)
	NotFound(w http.ResponseWriter, r *http.Request)
	ServerError(w http.ResponseWriter, r *http.Request, err error)
}

// OwnershipChecker reports whether an account holds an entry.
type OwnershipChecker interface {
	IsOwned(ctx context.Context, userID, pokemonID int64) (bool, error)
}

// SpriteStore serves mirrored sprite images.
type SpriteStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, int64, string, error)
}

type Handler struct {
	svc     *Service
	owned   OwnershipChecker
	sprites SpriteStore
	views   Views
	log     *zap.Logger
}

// NewHandler wires the catalog pages. sprites may be nil when no object
// store is configured.
func NewHandler(svc *Service, owned OwnershipChecker, sprites SpriteStore, views Views, log *zap.Logger) *Handler {
	return &Handler{svc: svc, owned: owned, sprites: sprites, views: views, log: log}
}

type indexData struct {
	Pokemons   models.Page[models.Pokemon]
	SearchTerm string
}

type detailData struct {
	Pokemon  *models.Pokemon
	IsCaught bool
}

// Index renders the paginated catalog, optionally filtered by search_term.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := strings.TrimSpace(q.Get("search_term"))

	page, err := h.svc.ListPage(r.Context(), term, models.ParsePage(q.Get("page")))
	if err != nil {
		h.views.ServerError(w, r, err)
		return
	}

	title := "Home"
	if term != "" {
		title = "Search: " + term
	}
	h.views.Render(w, r, http.StatusOK, "index.html", title, indexData{Pokemons: page, SearchTerm: term})
}

// Detail renders one entry addressed by id or name.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Lookup(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, models.ErrNotFound) {
		h.views.NotFound(w, r)
		return
	}
	if err != nil {
		h.views.ServerError(w, r, err)
		return
	}

	data := detailData{Pokemon: p}
	if u := auth.CurrentUser(r.Context()); u != nil {
		data.IsCaught, err = h.owned.IsOwned(r.Context(), u.ID, p.ID)
		if err != nil {
			h.views.ServerError(w, r, err)
			return
		}
	}
	h.views.Render(w, r, http.StatusOK, "pokemon_detail.html", p.DisplayName(), data)
}

// Search forwards the navbar search form to the index.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("search_term"))
	if term == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/?search_term="+url.QueryEscape(term), http.StatusFound)
}

// Sprite streams a mirrored sprite image from object storage.
func (h *Handler) Sprite(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if h.sprites == nil || file == "" || file != path.Base(file) || strings.HasPrefix(file, ".") {
		h.views.NotFound(w, r)
		return
	}

	body, size, contentType, err := h.sprites.Open(r.Context(), "sprites/"+file)
	if errors.Is(err, models.ErrNotFound) {
		h.views.NotFound(w, r)
		return
	}
	if err != nil {
		h.views.ServerError(w, r, err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	if size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, body); err != nil {
		h.log.Warn("stream sprite", zap.String("file", file), zap.Error(err))
	}
}

// APIList is the JSON form of Index.
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.ListPage(r.Context(), q.Get("search_term"), models.ParsePage(q.Get("page")))
	if err != nil {
		h.log.Error("api list pokemon", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// APIGet is the JSON form of Detail.
func (h *Handler) APIGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Lookup(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "pokemon not found"})
		return
	}
	if err != nil {
		h.log.Error("api get pokemon", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
