package catalog

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/ayush/pokedex/internal/models"
)

type memStore struct {
	byID   map[int64]models.Pokemon
	counts int
	lists  int
}

func newMemStore(entries ...models.Pokemon) *memStore {
	m := &memStore{byID: map[int64]models.Pokemon{}}
	for _, p := range entries {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memStore) match(f models.PokemonFilter) []models.Pokemon {
	var out []models.Pokemon
	for _, p := range m.byID {
		if f.ID != nil && p.ID != *f.ID {
			continue
		}
		if f.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.NameContains)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) CountPokemon(_ context.Context, f models.PokemonFilter) (int, error) {
	m.counts++
	return len(m.match(f)), nil
}

func (m *memStore) ListPokemon(_ context.Context, f models.PokemonFilter, limit, offset int) ([]models.Pokemon, error) {
	m.lists++
	all := m.match(f)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) GetPokemonByID(_ context.Context, id int64) (*models.Pokemon, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) GetPokemonByName(_ context.Context, name string) (*models.Pokemon, error) {
	for _, p := range m.byID {
		if strings.EqualFold(p.Name, name) {
			return &p, nil
		}
	}
	return nil, models.ErrNotFound
}

type ownedSet map[[2]int64]bool

func (o ownedSet) IsOwned(_ context.Context, userID, pokemonID int64) (bool, error) {
	return o[[2]int64{userID, pokemonID}], nil
}

// recordingViews captures what a handler asked to render.
type recordingViews struct {
	status int
	page   string
	title  string
	data   any
	err    error
}

func (v *recordingViews) Render(w http.ResponseWriter, _ *http.Request, status int, page, title string, data any) {
	v.status, v.page, v.title, v.data = status, page, title, data
	w.WriteHeader(status)
}

func (v *recordingViews) NotFound(w http.ResponseWriter, r *http.Request) {
	v.Render(w, r, http.StatusNotFound, "errors/404.html", "Page Not Found", nil)
}

func (v *recordingViews) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	v.err = err
	v.Render(w, r, http.StatusInternalServerError, "errors/500.html", "Something Went Wrong", nil)
}

func seedEntries(n int) []models.Pokemon {
	names := []string{"bulbasaur", "ivysaur", "venusaur", "charmander", "charmeleon", "charizard"}
	out := make([]models.Pokemon, 0, n)
	for i := 1; i <= n; i++ {
		name := "mon" + strings.Repeat("x", i)
		if i <= len(names) {
			name = names[i-1]
		}
		out = append(out, models.Pokemon{ID: int64(i), Name: name, Type1: "normal"})
	}
	return out
}
