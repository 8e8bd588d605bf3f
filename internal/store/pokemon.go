package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ayush/pokedex/internal/models"
)

var pokemonFields = []string{
	"id", "name", "type1", "type2", "hp", "attack", "defense", "sp_attack",
	"sp_defense", "speed", "height", "weight", "sprite_url", "description",
}

var pokemonColumns = pokemonColumnList("")

func pokemonColumnList(alias string) string {
	cols := make([]string, len(pokemonFields))
	for i, f := range pokemonFields {
		cols[i] = alias + f
	}
	return strings.Join(cols, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause renders f as a WHERE clause whose placeholders start at $n.
func whereClause(f models.PokemonFilter, n int) (string, []any) {
	switch {
	case f.ID != nil:
		return " WHERE id = $" + strconv.Itoa(n), []any{*f.ID}
	case f.NameContains != "":
		return " WHERE name ILIKE $" + strconv.Itoa(n),
			[]any{"%" + likeEscaper.Replace(f.NameContains) + "%"}
	}
	return "", nil
}

// CountPokemon returns the number of entries matching f.
func (s *PostgresStore) CountPokemon(ctx context.Context, f models.PokemonFilter) (int, error) {
	where, args := whereClause(f, 1)
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM pokemon`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pokemon: %w", err)
	}
	return n, nil
}

// ListPokemon returns entries matching f ordered by id.
func (s *PostgresStore) ListPokemon(ctx context.Context, f models.PokemonFilter, limit, offset int) ([]models.Pokemon, error) {
	where, args := whereClause(f, 1)
	n := len(args)
	query := `SELECT ` + pokemonColumns + ` FROM pokemon` + where +
		` ORDER BY id LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := s.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list pokemon: %w", err)
	}
	return collectPokemon(rows)
}

func (s *PostgresStore) GetPokemonByID(ctx context.Context, id int64) (*models.Pokemon, error) {
	return s.getPokemon(ctx, `SELECT `+pokemonColumns+` FROM pokemon WHERE id = $1`, id)
}

// GetPokemonByName matches name case-insensitively.
func (s *PostgresStore) GetPokemonByName(ctx context.Context, name string) (*models.Pokemon, error) {
	return s.getPokemon(ctx, `SELECT `+pokemonColumns+` FROM pokemon WHERE LOWER(name) = LOWER($1)`, name)
}

func (s *PostgresStore) getPokemon(ctx context.Context, query string, arg any) (*models.Pokemon, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("get pokemon: %w", err)
	}
	list, err := collectPokemon(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, models.ErrNotFound
	}
	return &list[0], nil
}

// ExistingPokemonIDs reports which of ids are already in the catalog.
func (s *PostgresStore) ExistingPokemonIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM pokemon WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("existing pokemon: %w", err)
	}
	defer rows.Close()

	seen := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pokemon id: %w", err)
		}
		seen[id] = true
	}
	return seen, rows.Err()
}

// InsertPokemon adds entries in one transaction, skipping any whose id or
// name already exists. It returns the number of rows inserted.
func (s *PostgresStore) InsertPokemon(ctx context.Context, list []models.Pokemon) (int, error) {
	inserted := 0
	err := s.WithTx(ctx, func(tx *PostgresStore) error {
		for _, p := range list {
			tag, err := tx.db.Exec(ctx,
				`INSERT INTO pokemon (`+pokemonColumns+`)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
				 ON CONFLICT DO NOTHING`,
				p.ID, p.Name, p.Type1, p.Type2, p.HP, p.Attack, p.Defense, p.SpAttack,
				p.SpDefense, p.Speed, p.Height, p.Weight, p.SpriteURL, p.Description,
			)
			if err != nil {
				return fmt.Errorf("insert pokemon %d: %w", p.ID, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ClearCatalog removes every catalog entry together with the caught
// records that reference them.
func (s *PostgresStore) ClearCatalog(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `TRUNCATE TABLE caught_pokemon, pokemon`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	return nil
}

func collectPokemon(rows pgx.Rows) ([]models.Pokemon, error) {
	defer rows.Close()

	var out []models.Pokemon
	for rows.Next() {
		var p models.Pokemon
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Type1, &p.Type2, &p.HP, &p.Attack, &p.Defense,
			&p.SpAttack, &p.SpDefense, &p.Speed, &p.Height, &p.Weight,
			&p.SpriteURL, &p.Description,
		); err != nil {
			return nil, fmt.Errorf("scan pokemon: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pokemon: %w", err)
	}
	return out, nil
}
