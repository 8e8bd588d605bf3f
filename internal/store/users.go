package store

import (
	"context"
	"fmt"

	"github.com/ayush/pokedex/internal/models"
)

const userColumns = `id, username, email, password, created_at`

// CreateUser inserts an account. Unique violations are reported as
// models.ErrDuplicateUsername or models.ErrDuplicateEmail.
func (s *PostgresStore) CreateUser(ctx context.Context, username, email, hashedPassword string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, email, created_at`,
		username, email, hashedPassword,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if code, constraint := pgCode(err); code == pgUniqueViolation {
			switch constraint {
			case "users_username_key":
				return nil, models.ErrDuplicateUsername
			case "users_email_key":
				return nil, models.ErrDuplicateEmail
			}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.Password = hashedPassword
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
