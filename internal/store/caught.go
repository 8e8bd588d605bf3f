package store

import (
	"context"
	"fmt"

	"github.com/ayush/pokedex/internal/models"
)

// AddCaught records that userID holds pokemonID. The primary key on
// (user_id, pokemon_id) absorbs concurrent duplicates: added is false when
// the pair already existed. An unknown pokemon yields models.ErrNotFound.
func (s *PostgresStore) AddCaught(ctx context.Context, userID, pokemonID int64) (added bool, err error) {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO caught_pokemon (user_id, pokemon_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, pokemon_id) DO NOTHING`,
		userID, pokemonID,
	)
	if err != nil {
		if code, _ := pgCode(err); code == pgForeignKeyViolation {
			return false, models.ErrNotFound
		}
		return false, fmt.Errorf("add caught: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveCaught deletes the pair. removed is false when nothing was held.
func (s *PostgresStore) RemoveCaught(ctx context.Context, userID, pokemonID int64) (removed bool, err error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM caught_pokemon WHERE user_id = $1 AND pokemon_id = $2`,
		userID, pokemonID,
	)
	if err != nil {
		return false, fmt.Errorf("remove caught: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) IsCaught(ctx context.Context, userID, pokemonID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM caught_pokemon WHERE user_id = $1 AND pokemon_id = $2)`,
		userID, pokemonID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("is caught: %w", err)
	}
	return ok, nil
}

func (s *PostgresStore) CountCaught(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM caught_pokemon WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count caught: %w", err)
	}
	return n, nil
}

// ListCaught joins the ledger to the catalog, ordered by pokemon id.
func (s *PostgresStore) ListCaught(ctx context.Context, userID int64, limit, offset int) ([]models.Pokemon, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+pokemonColumnList("p.")+`
		 FROM caught_pokemon c
		 JOIN pokemon p ON p.id = c.pokemon_id
		 WHERE c.user_id = $1
		 ORDER BY p.id
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list caught: %w", err)
	}
	return collectPokemon(rows)
}
