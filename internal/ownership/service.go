// Package ownership tracks which catalog entries each account has caught.
package ownership

import (
	"context"
	"fmt"

	"github.com/ayush/pokedex/internal/models"
)

// Outcome is the result of a catch or release. Repeating either operation
// is not an error.
type Outcome string

const (
	Caught       Outcome = "caught"
	AlreadyOwned Outcome = "already_owned"
	Released     Outcome = "released"
	NotOwned     Outcome = "not_owned"
)

// Ledger is the account/entry join table. The storage layer's uniqueness
// constraint on the pair decides the outcome of concurrent catches.
type Ledger interface {
	AddCaught(ctx context.Context, userID, pokemonID int64) (bool, error)
	RemoveCaught(ctx context.Context, userID, pokemonID int64) (bool, error)
	IsCaught(ctx context.Context, userID, pokemonID int64) (bool, error)
	CountCaught(ctx context.Context, userID int64) (int, error)
	ListCaught(ctx context.Context, userID int64, limit, offset int) ([]models.Pokemon, error)
}

type Service struct {
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// Catch records the entry as owned. Unknown entries yield ErrNotFound.
func (s *Service) Catch(ctx context.Context, userID, pokemonID int64) (Outcome, error) {
	added, err := s.ledger.AddCaught(ctx, userID, pokemonID)
	if err != nil {
		return "", fmt.Errorf("catch %d: %w", pokemonID, err)
	}
	if !added {
		return AlreadyOwned, nil
	}
	return Caught, nil
}

func (s *Service) Release(ctx context.Context, userID, pokemonID int64) (Outcome, error) {
	removed, err := s.ledger.RemoveCaught(ctx, userID, pokemonID)
	if err != nil {
		return "", fmt.Errorf("release %d: %w", pokemonID, err)
	}
	if !removed {
		return NotOwned, nil
	}
	return Released, nil
}

func (s *Service) IsOwned(ctx context.Context, userID, pokemonID int64) (bool, error) {
	return s.ledger.IsCaught(ctx, userID, pokemonID)
}

// ListOwned pages through an account's entries in catalog order.
func (s *Service) ListOwned(ctx context.Context, userID int64, page int) (models.Page[models.Pokemon], error) {
	page = models.NormalizePage(page)
	total, err := s.ledger.CountCaught(ctx, userID)
	if err != nil {
		return models.Page[models.Pokemon]{}, fmt.Errorf("count caught: %w", err)
	}

	offset := models.Offset(page, models.PerPage)
	if offset >= total {
		return models.NewPage[models.Pokemon](nil, total, page, models.PerPage), nil
	}

	items, err := s.ledger.ListCaught(ctx, userID, models.PerPage, offset)
	if err != nil {
		return models.Page[models.Pokemon]{}, fmt.Errorf("list caught: %w", err)
	}
	return models.NewPage(items, total, page, models.PerPage), nil
}
