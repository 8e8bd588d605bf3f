package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayush/pokedex/internal/models"
)

const (
	SessionCookie = "session_id"
	sessionPrefix = "session:"
)

// SessionStore maps opaque session ids to account ids in Redis.
type SessionStore struct {
	rdb   *redis.Client
	ttl   time.Duration
	newID func() string
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl, newID: uuid.NewString}
}

// Create stores a new session for userID and returns its id.
func (s *SessionStore) Create(ctx context.Context, userID int64) (string, error) {
	sid := s.newID()
	if err := s.rdb.Set(ctx, sessionPrefix+sid, strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	return sid, nil
}

// Get returns the account id for a session. Unknown or expired sessions
// yield models.ErrUnauthenticated.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (int64, error) {
	val, err := s.rdb.Get(ctx, sessionPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, models.ErrUnauthenticated
	}
	if err != nil {
		return 0, fmt.Errorf("session get: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, models.ErrUnauthenticated
	}
	return id, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, sessionPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
