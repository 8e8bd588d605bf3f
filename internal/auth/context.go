package auth

import (
	"context"

	"github.com/ayush/pokedex/internal/models"
)

type ctxKey int

const (
	userKey ctxKey = iota
	sessionKey
)

// WithUser attaches the authenticated account and its session id.
func WithUser(ctx context.Context, u *models.User, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, sessionKey, sessionID)
}

// CurrentUser returns the authenticated account or nil.
func CurrentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey).(string)
	return sid
}
