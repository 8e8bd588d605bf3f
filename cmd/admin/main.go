// Command admin manages the catalog schema and seed data.
//
//	admin init-db                 apply migrations
//	admin seed-db                 import missing entries from PokeAPI
//	admin reset-db [-catalog-only] drop everything, migrate and reseed
//	admin runs [-n 10]            list recent import runs
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayush/pokedex/internal/config"
	"github.com/ayush/pokedex/internal/importer"
	"github.com/ayush/pokedex/internal/logging"
	"github.com/ayush/pokedex/internal/models"
	"github.com/ayush/pokedex/internal/store"
)

const usage = `usage: admin <command> [flags]

commands:
  init-db    create or upgrade the database schema
  seed-db    import catalog entries missing from the database
  reset-db   drop all tables, recreate them and reseed
  runs       list recent import runs
`

var errUsage = errors.New("invalid usage")

func main() {
	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, cfg, log, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "init-db":
		return withPostgres(ctx, cfg, func(pool *pgxpool.Pool) error {
			if err := store.Migrate(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintln(out, "Initialized the database.")
			return nil
		})

	case "seed-db":
		return withPostgres(ctx, cfg, func(pool *pgxpool.Pool) error {
			if err := store.Migrate(ctx, pool); err != nil {
				return err
			}
			return withImporter(ctx, cfg, log, pool, func(im *importer.Importer) error {
				run, err := im.Seed(ctx)
				if err != nil {
					return err
				}
				printRun(out, run)
				return nil
			})
		})

	case "reset-db":
		fs := flag.NewFlagSet("reset-db", flag.ContinueOnError)
		catalogOnly := fs.Bool("catalog-only", false, "keep accounts and only replace the catalog")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		return withPostgres(ctx, cfg, func(pool *pgxpool.Pool) error {
			if !*catalogOnly {
				if err := store.ResetSchema(ctx, pool); err != nil {
					return err
				}
				fmt.Fprintln(out, "Dropped and recreated all tables.")
			}
			return withImporter(ctx, cfg, log, pool, func(im *importer.Importer) error {
				run, err := im.Reset(ctx)
				if err != nil {
					return err
				}
				printRun(out, run)
				return nil
			})
		})

	case "runs":
		fs := flag.NewFlagSet("runs", flag.ContinueOnError)
		n := fs.Int64("n", 10, "number of runs to show")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		if cfg.MongoURI == "" {
			return errors.New("MONGO_URI is not set")
		}
		client, runs, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background()) //nolint:errcheck

		list, err := runs.RecentRuns(ctx, *n)
		if err != nil {
			return err
		}
		printRuns(out, list)
		return nil

	default:
		return errUsage
	}
}

func withPostgres(ctx context.Context, cfg *config.Config, fn func(*pgxpool.Pool) error) error {
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer pool.Close()
	return fn(pool)
}

// withImporter builds an importer with whichever optional backends are
// configured.
func withImporter(ctx context.Context, cfg *config.Config, log *zap.Logger, pool *pgxpool.Pool, fn func(*importer.Importer) error) error {
	opts := importer.Options{Limit: cfg.SeedLimit, Concurrency: cfg.SeedConcurrency}

	if cfg.MinioEndpoint != "" {
		sprites, err := store.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return fmt.Errorf("minio connect: %w", err)
		}
		opts.Sprites = sprites
	}
	if cfg.MongoURI != "" {
		client, runs, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Warn("import runs will not be recorded", zap.Error(err))
		} else {
			defer client.Disconnect(context.Background()) //nolint:errcheck
			opts.Runs = runs
		}
	}

	im := importer.New(importer.NewClient(cfg.PokeAPIURL), store.NewPostgresStore(pool), log.Named("importer"), opts)
	return fn(im)
}

func printRun(out io.Writer, run *models.ImportRun) {
	fmt.Fprintf(out, "Successfully seeded %d new Pokémon (%d skipped, %d failed) in %s.\n",
		run.Seeded, run.Skipped, len(run.Failed), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	if len(run.Failed) > 0 {
		fmt.Fprintf(out, "Failed ids: %v\n", run.Failed)
	}
}

func printRuns(out io.Writer, runs []models.ImportRun) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No import runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tREQUESTED\tSEEDED\tSKIPPED\tFAILED\tRESET\tID")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%t\t%s\n",
			r.StartedAt.Format(time.RFC3339), r.Requested, r.Seeded, r.Skipped, len(r.Failed), r.Reset, r.ID)
	}
	_ = tw.Flush()
}
