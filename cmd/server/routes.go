package main

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ayush/pokedex/internal/auth"
	"github.com/ayush/pokedex/internal/catalog"
	"github.com/ayush/pokedex/internal/logging"
	"github.com/ayush/pokedex/internal/metrics"
	"github.com/ayush/pokedex/internal/middleware"
	"github.com/ayush/pokedex/internal/ownership"
	"github.com/ayush/pokedex/internal/web"
)

type routerDeps struct {
	log       *zap.Logger
	metrics   *metrics.Metrics
	views     *web.Renderer
	authn     middleware.Authenticator
	limiter   *middleware.RateLimiter
	origins   []string
	proxies   []netip.Prefix
	auth      *auth.Handler
	catalog   *catalog.Handler
	ownership *ownership.Handler
	ready     func(context.Context) error
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.TrustedRealIP(d.proxies))
	r.Use(logging.RequestLogger(d.log))
	r.Use(d.metrics.Middleware)
	r.Use(chimw.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := d.ready(r.Context()); err != nil {
			d.log.Warn("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", d.metrics.Handler())

	// Read-only JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.origins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/pokemon", d.catalog.APIList)
		r.Get("/pokemon/{id}", d.catalog.APIGet)
	})

	// HTML pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(d.authn, d.log.Named("session")))

		r.Get("/", d.catalog.Index)
		r.Get("/index", d.catalog.Index)
		r.Get("/search", d.catalog.Search)
		r.Get("/pokemon/{id}", d.catalog.Detail)
		r.Get("/sprites/{file}", d.catalog.Sprite)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/signup", d.auth.SignupPage)
			r.Post("/signup", d.auth.Signup)
			r.Get("/login", d.auth.LoginPage)
			r.With(d.limiter.Handler).Post("/login", d.auth.Login)
			r.With(middleware.RequireAuth(d.views.ServerError)).Get("/logout", d.auth.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.views.ServerError))
			r.Get("/profile", d.ownership.Profile)
			r.Post("/pokemon/{id}/catch", d.ownership.Catch)
			r.Post("/pokemon/{id}/release", d.ownership.Release)
		})

		r.NotFound(d.views.NotFound)
	})

	return r
}
