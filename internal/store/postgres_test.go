package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/pokedex/internal/models"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return NewPostgresStore(mock), mock
}

func TestCreateUser_Success(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ash", "ash@example.com", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "created_at"}).
			AddRow(int64(7), "ash", "ash@example.com", now))

	u, err := s.CreateUser(context.Background(), "ash", "ash@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "ash", u.Username)
	assert.Equal(t, "hash", u.Password)
}

func TestCreateUser_UniqueViolations(t *testing.T) {
	cases := map[string]error{
		"users_username_key": models.ErrDuplicateUsername,
		"users_email_key":    models.ErrDuplicateEmail,
	}
	for constraint, want := range cases {
		t.Run(constraint, func(t *testing.T) {
			s, mock := newMockStore(t)
			mock.ExpectQuery(`INSERT INTO users`).
				WithArgs("ash", "ash@example.com", "hash").
				WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraint})

			_, err := s.CreateUser(context.Background(), "ash", "ash@example.com", "hash")
			assert.ErrorIs(t, err, want)
		})
	}
}

func TestCreateUser_DBError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ash", "ash@example.com", "hash").
		WillReturnError(errors.New("db down"))

	_, err := s.CreateUser(context.Background(), "ash", "ash@example.com", "hash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create user: db down")
}

func TestGetUserByEmail_Found(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("ash@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password", "created_at"}).
			AddRow(int64(1), "ash", "ash@example.com", "hash", now))

	u, err := s.GetUserByEmail(context.Background(), "ash@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "hash", u.Password)
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCountPokemon_Filters(t *testing.T) {
	id := int64(1)
	cases := []struct {
		name   string
		filter models.PokemonFilter
		query  string
		args   []any
	}{
		{"all", models.PokemonFilter{}, `SELECT COUNT\(\*\) FROM pokemon$`, nil},
		{"by id", models.PokemonFilter{ID: &id}, `SELECT COUNT\(\*\) FROM pokemon WHERE id = \$1`, []any{int64(1)}},
		{"by name", models.PokemonFilter{NameContains: "bul_ba%"}, `SELECT COUNT\(\*\) FROM pokemon WHERE name ILIKE \$1`, []any{`%bul\_ba\%%`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			q := mock.ExpectQuery(tc.query)
			if tc.args != nil {
				q = q.WithArgs(tc.args...)
			}
			q.WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

			n, err := s.CountPokemon(context.Background(), tc.filter)
			require.NoError(t, err)
			assert.Equal(t, 3, n)
		})
	}
}

func TestListPokemon(t *testing.T) {
	id := int64(1)
	cases := []struct {
		name   string
		filter models.PokemonFilter
		offset int
		query  string
		args   []any
	}{
		{"all", models.PokemonFilter{}, 40,
			`FROM pokemon ORDER BY id LIMIT \$1 OFFSET \$2$`, []any{20, 40}},
		{"by id", models.PokemonFilter{ID: &id}, 0,
			`FROM pokemon WHERE id = \$1 ORDER BY id LIMIT \$2 OFFSET \$3$`, []any{int64(1), 20, 0}},
		{"by name", models.PokemonFilter{NameContains: "saur"}, 20,
			`FROM pokemon WHERE name ILIKE \$1 ORDER BY id LIMIT \$2 OFFSET \$3$`, []any{"%saur%", 20, 20}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			hp, type2, sprite := int32(45), "poison", "https://img.test/1.png"
			mock.ExpectQuery(`^SELECT id, name, .+ ` + tc.query).
				WithArgs(tc.args...).
				WillReturnRows(pgxmock.NewRows(pokemonFields).
					AddRow(int64(1), "bulbasaur", "grass", &type2, &hp, &hp, &hp, &hp, &hp, &hp, &hp, &hp, &sprite, (*string)(nil)).
					AddRow(int64(2), "ivysaur", "grass", (*string)(nil), (*int32)(nil), (*int32)(nil), (*int32)(nil),
						(*int32)(nil), (*int32)(nil), (*int32)(nil), (*int32)(nil), (*int32)(nil), (*string)(nil), (*string)(nil)))

			got, err := s.ListPokemon(context.Background(), tc.filter, models.PerPage, tc.offset)
			require.NoError(t, err)
			require.Len(t, got, 2)

			assert.Equal(t, int64(1), got[0].ID)
			require.NotNil(t, got[0].HP)
			assert.Equal(t, int32(45), *got[0].HP)
			require.NotNil(t, got[0].Type2)
			assert.Equal(t, "poison", *got[0].Type2)
			assert.Nil(t, got[0].Description)

			assert.Equal(t, int64(2), got[1].ID)
			assert.Equal(t, "ivysaur", got[1].Name)
			assert.Nil(t, got[1].Type2)
			assert.Nil(t, got[1].HP)
			assert.Nil(t, got[1].Speed)
			assert.Nil(t, got[1].Weight)
			assert.Nil(t, got[1].SpriteURL)
		})
	}
}

func TestListPokemon_QueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM pokemon ORDER BY id`).
		WithArgs(20, 0).
		WillReturnError(errors.New("connection reset"))

	_, err := s.ListPokemon(context.Background(), models.PokemonFilter{}, models.PerPage, 0)
	assert.ErrorContains(t, err, "list pokemon")
}

func TestGetPokemonByName_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM pokemon WHERE LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs("MissingNo").
		WillReturnRows(pgxmock.NewRows(pokemonFields))

	_, err := s.GetPokemonByName(context.Background(), "MissingNo")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExistingPokemonIDs(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT id FROM pokemon WHERE id = ANY\(\$1\)`).
		WithArgs([]int64{1, 2, 3}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(3)))

	seen, err := s.ExistingPokemonIDs(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true, 3: true}, seen)
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestInsertPokemon_CountsInsertedRows(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO pokemon`).WithArgs(anyArgs(14)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO pokemon`).WithArgs(anyArgs(14)...).WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	n, err := s.InsertPokemon(context.Background(), []models.Pokemon{
		{ID: 1, Name: "bulbasaur", Type1: "grass"},
		{ID: 2, Name: "ivysaur", Type1: "grass"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsertPokemon_RollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO pokemon`).WithArgs(anyArgs(14)...).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.InsertPokemon(context.Background(), []models.Pokemon{{ID: 1, Name: "bulbasaur", Type1: "grass"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert pokemon 1")
}

func TestClearCatalog(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`TRUNCATE TABLE caught_pokemon, pokemon`).WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))

	require.NoError(t, s.ClearCatalog(context.Background()))
}
