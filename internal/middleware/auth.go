package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/ayush/pokedex/internal/auth"
	"github.com/ayush/pokedex/internal/models"
	"github.com/ayush/pokedex/internal/web"
)

// Authenticator resolves a session id to its account.
type Authenticator interface {
	RequireAuth(ctx context.Context, sessionID string) (*models.User, error)
}

type sessionErrKey struct{}

// LoadSession resolves the session cookie, if any, and injects the account
// into the request context. Anonymous requests pass through unchanged;
// stale cookies are cleared. When the session backend fails the request
// continues anonymously and the failure is recorded for RequireAuth.
func LoadSession(authn Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authn.RequireAuth(r.Context(), cookie.Value)
			switch {
			case errors.Is(err, models.ErrUnauthenticated):
				auth.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			case err != nil:
				log.Error("session lookup failed", zap.Error(err), zap.String("path", r.URL.Path))
				ctx := context.WithValue(r.Context(), sessionErrKey{}, err)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx := auth.WithUser(r.Context(), user, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth redirects anonymous requests to the login page, keeping the
// requested destination in the next parameter. A session that could not be
// resolved because the backend failed goes to onError instead, so a valid
// login is not mistaken for a logged-out visitor.
func RequireAuth(onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.CurrentUser(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}
			if err, ok := r.Context().Value(sessionErrKey{}).(error); ok {
				onError(w, r, err)
				return
			}
			web.SetFlash(w, r, "info", "Please log in to access this page.")
			http.Redirect(w, r, "/auth/login?next="+url.QueryEscape(destination(r)), http.StatusFound)
		})
	}
}

// destination is where the user should land after logging in. Non-GET
// requests cannot be replayed, so the referring page is used instead.
func destination(r *http.Request) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return auth.SafeNext(r.URL.RequestURI())
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host {
		return auth.SafeNext(ref.RequestURI())
	}
	return "/"
}
