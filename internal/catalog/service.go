// Package catalog serves read-only browse, search and detail views over the
// seeded Pokemon catalog.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ayush/pokedex/internal/models"
)

// Store is the catalog persistence the service reads from.
type Store interface {
	CountPokemon(ctx context.Context, f models.PokemonFilter) (int, error)
	ListPokemon(ctx context.Context, f models.PokemonFilter, limit, offset int) ([]models.Pokemon, error)
	GetPokemonByID(ctx context.Context, id int64) (*models.Pokemon, error)
	GetPokemonByName(ctx context.Context, name string) (*models.Pokemon, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListPage returns one page of the catalog ordered by id. A blank term lists
// everything, an all-digit term matches that id only and anything else is a
// case-insensitive name substring match. Pages past the end are empty.
func (s *Service) ListPage(ctx context.Context, searchTerm string, page int) (models.Page[models.Pokemon], error) {
	page = models.NormalizePage(page)
	f, ok := ParseSearch(searchTerm)
	if !ok {
		return models.NewPage[models.Pokemon](nil, 0, page, models.PerPage), nil
	}

	total, err := s.store.CountPokemon(ctx, f)
	if err != nil {
		return models.Page[models.Pokemon]{}, fmt.Errorf("count pokemon: %w", err)
	}

	offset := models.Offset(page, models.PerPage)
	if offset >= total {
		return models.NewPage[models.Pokemon](nil, total, page, models.PerPage), nil
	}

	items, err := s.store.ListPokemon(ctx, f, models.PerPage, offset)
	if err != nil {
		return models.Page[models.Pokemon]{}, fmt.Errorf("list pokemon: %w", err)
	}
	return models.NewPage(items, total, page, models.PerPage), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.Pokemon, error) {
	return s.store.GetPokemonByID(ctx, id)
}

// GetByName matches the whole name case-insensitively.
func (s *Service) GetByName(ctx context.Context, name string) (*models.Pokemon, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrNotFound
	}
	return s.store.GetPokemonByName(ctx, name)
}

// Lookup resolves a path segment that is either a numeric id or a name.
func (s *Service) Lookup(ctx context.Context, ident string) (*models.Pokemon, error) {
	if isDigits(ident) {
		id, err := strconv.ParseInt(ident, 10, 64)
		if err != nil {
			return nil, models.ErrNotFound
		}
		return s.GetByID(ctx, id)
	}
	return s.GetByName(ctx, ident)
}

// ParseSearch turns a raw search term into a filter. ok is false when the
// term can match nothing, such as an id that overflows int64.
func ParseSearch(term string) (f models.PokemonFilter, ok bool) {
	term = strings.TrimSpace(term)
	switch {
	case term == "":
		return f, true
	case isDigits(term):
		id, err := strconv.ParseInt(term, 10, 64)
		if err != nil {
			return f, false
		}
		f.ID = &id
		return f, true
	default:
		f.NameContains = term
		return f, true
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
