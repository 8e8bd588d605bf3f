package ownership

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/ayush/pokedex/internal/models"
)

type pair struct{ user, pokemon int64 }

// memLedger mirrors the caught_pokemon table: one row per pair and a
// foreign key onto the catalog.
type memLedger struct {
	mu      sync.Mutex
	catalog map[int64]models.Pokemon
	rows    map[pair]bool
}

func newMemLedger(entries ...models.Pokemon) *memLedger {
	l := &memLedger{catalog: map[int64]models.Pokemon{}, rows: map[pair]bool{}}
	for _, p := range entries {
		l.catalog[p.ID] = p
	}
	return l
}

func (l *memLedger) AddCaught(_ context.Context, userID, pokemonID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.catalog[pokemonID]; !ok {
		return false, models.ErrNotFound
	}
	k := pair{userID, pokemonID}
	if l.rows[k] {
		return false, nil
	}
	l.rows[k] = true
	return true, nil
}

func (l *memLedger) RemoveCaught(_ context.Context, userID, pokemonID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := pair{userID, pokemonID}
	if !l.rows[k] {
		return false, nil
	}
	delete(l.rows, k)
	return true, nil
}

func (l *memLedger) IsCaught(_ context.Context, userID, pokemonID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows[pair{userID, pokemonID}], nil
}

func (l *memLedger) owned(userID int64) []models.Pokemon {
	var out []models.Pokemon
	for k := range l.rows {
		if k.user == userID {
			out = append(out, l.catalog[k.pokemon])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *memLedger) CountCaught(_ context.Context, userID int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.owned(userID)), nil
}

func (l *memLedger) ListCaught(_ context.Context, userID int64, limit, offset int) ([]models.Pokemon, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := l.owned(userID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (l *memLedger) GetByID(_ context.Context, id int64) (*models.Pokemon, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.catalog[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (l *memLedger) records() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

type countingRecorder map[string]int

func (c countingRecorder) Ownership(outcome string) { c[outcome]++ }

type recordingViews struct {
	status int
	page   string
	data   any
}

func (v *recordingViews) Render(w http.ResponseWriter, _ *http.Request, status int, page, _ string, data any) {
	v.status, v.page, v.data = status, page, data
	w.WriteHeader(status)
}

func (v *recordingViews) NotFound(w http.ResponseWriter, r *http.Request) {
	v.Render(w, r, http.StatusNotFound, "errors/404.html", "", nil)
}

func (v *recordingViews) ServerError(w http.ResponseWriter, r *http.Request, _ error) {
	v.Render(w, r, http.StatusInternalServerError, "errors/500.html", "", nil)
}

func catalogOf(n int) []models.Pokemon {
	out := make([]models.Pokemon, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.Pokemon{ID: int64(i), Name: "mon" + string(rune('a'+i%26)), Type1: "normal"})
	}
	out[0].Name = "bulbasaur"
	return out
}
