package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayush/pokedex/internal/auth"
	"github.com/ayush/pokedex/internal/catalog"
	"github.com/ayush/pokedex/internal/config"
	"github.com/ayush/pokedex/internal/logging"
	"github.com/ayush/pokedex/internal/metrics"
	"github.com/ayush/pokedex/internal/middleware"
	"github.com/ayush/pokedex/internal/ownership"
	"github.com/ayush/pokedex/internal/store"
	"github.com/ayush/pokedex/internal/web"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer pgPool.Close()
	if err := store.Migrate(ctx, pgPool); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	pgStore := store.NewPostgresStore(pgPool)

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb, cfg.SessionTTL)

	// ── MinIO (optional sprite mirror) ───────────────────────
	var sprites catalog.SpriteStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := store.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return fmt.Errorf("minio connect: %w", err)
		}
		sprites = minioStore
	} else {
		log.Info("MINIO_ENDPOINT not set, /sprites disabled")
	}

	// ── Services ─────────────────────────────────────────────
	m := metrics.New()
	authSvc := auth.NewService(pgStore, sessions, log.Named("auth"))
	catalogSvc := catalog.NewService(pgStore)
	ownershipSvc := ownership.NewService(pgStore)

	views, err := web.NewRenderer(log.Named("web"), auth.CurrentUser)
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst, log.Named("ratelimit"))
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	limiter.StartCleanup(time.Minute, stopCleanup)

	// ── Router ───────────────────────────────────────────────
	router := newRouter(routerDeps{
		log:       log,
		metrics:   m,
		views:     views,
		authn:     authSvc,
		limiter:   limiter,
		origins:   cfg.AllowedOrigins,
		proxies:   proxies,
		auth:      auth.NewHandler(authSvc, views, m, log.Named("auth"), cfg.SessionTTL, cfg.CookieSecure),
		catalog:   catalog.NewHandler(catalogSvc, ownershipSvc, sprites, views, log.Named("catalog")),
		ownership: ownership.NewHandler(ownershipSvc, catalogSvc, views, m),
		ready: func(ctx context.Context) error {
			if err := pgPool.Ping(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx).Err()
		},
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("pokedex listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
