package ownership

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/pokedex/internal/auth"
	"github.com/ayush/pokedex/internal/models"
	"github.com/ayush/pokedex/internal/web"
)

// Views renders HTML pages.
type Views interface {
	Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any)
	NotFound(w http.ResponseWriter, r *http.Request)
	ServerError(w http.ResponseWriter, r *http.Request, err error)
}

// Catalog resolves the entry a catch or release refers to.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*models.Pokemon, error)
}

// Recorder counts ownership outcomes.
type Recorder interface {
	Ownership(outcome string)
}

type Handler struct {
	svc     *Service
	catalog Catalog
	views   Views
	metrics Recorder
}

func NewHandler(svc *Service, catalog Catalog, views Views, metrics Recorder) *Handler {
	return &Handler{svc: svc, catalog: catalog, views: views, metrics: metrics}
}

type profileData struct {
	User   *models.User
	Caught models.Page[models.Pokemon]
}

// Profile lists the caller's caught entries. Mounted behind RequireAuth.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	if user == nil {
		h.views.NotFound(w, r)
		return
	}

	page := models.ParsePage(r.URL.Query().Get("page"))
	caught, err := h.svc.ListOwned(r.Context(), user.ID, page)
	if err != nil {
		h.views.ServerError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "profile.html", user.Username+"'s Profile", profileData{User: user, Caught: caught})
}

// Catch adds the entry to the caller's collection and returns to its page.
func (h *Handler) Catch(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Catch)
}

// Release removes the entry from the caller's collection.
func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Release)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, int64) (Outcome, error)) {
	user := auth.CurrentUser(r.Context())
	if user == nil {
		h.views.NotFound(w, r)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.views.NotFound(w, r)
		return
	}
	p, err := h.catalog.GetByID(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		h.views.NotFound(w, r)
		return
	}
	if err != nil {
		h.views.ServerError(w, r, err)
		return
	}

	outcome, err := op(r.Context(), user.ID, p.ID)
	if errors.Is(err, models.ErrNotFound) {
		// Entry vanished between lookup and write, e.g. during a reseed.
		h.views.NotFound(w, r)
		return
	}
	if err != nil {
		h.views.ServerError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.Ownership(string(outcome))
	}
	category, msg := notice(outcome, p.DisplayName())
	web.SetFlash(w, r, category, msg)
	http.Redirect(w, r, fmt.Sprintf("/pokemon/%d", p.ID), http.StatusSeeOther)
}

func notice(o Outcome, name string) (category, message string) {
	switch o {
	case Caught:
		return "success", "You caught " + name + "!"
	case AlreadyOwned:
		return "info", "You already have " + name + " in your Pokedex."
	case Released:
		return "success", "You released " + name + "."
	default:
		return "info", name + " is not in your Pokedex."
	}
}
