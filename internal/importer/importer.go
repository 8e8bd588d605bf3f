package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayush/pokedex/internal/models"
)

const (
	batchSize    = 20
	spritePrefix = "sprites/"
)

// Fetcher retrieves catalog data from the upstream API.
type Fetcher interface {
	FetchPokemon(ctx context.Context, id int64) (*models.Pokemon, error)
	FetchSprite(ctx context.Context, url string) ([]byte, string, error)
}

// CatalogStore is the write side of the catalog.
type CatalogStore interface {
	ExistingPokemonIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	InsertPokemon(ctx context.Context, list []models.Pokemon) (int, error)
	ClearCatalog(ctx context.Context) error
}

// SpriteStore mirrors sprite images.
type SpriteStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	RemoveAll(ctx context.Context, prefix string) error
}

// RunLog records finished import runs.
type RunLog interface {
	InsertRun(ctx context.Context, run *models.ImportRun) error
}

type Options struct {
	Limit       int
	Concurrency int
	// Sprites and Runs are optional.
	Sprites SpriteStore
	Runs    RunLog
}

// Importer seeds catalog ids 1..Limit, skipping ids already present.
type Importer struct {
	fetch       Fetcher
	store       CatalogStore
	sprites     SpriteStore
	runs        RunLog
	log         *zap.Logger
	limit       int
	concurrency int
	now         func() time.Time
}

func New(fetch Fetcher, store CatalogStore, log *zap.Logger, opts Options) *Importer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Importer{
		fetch:       fetch,
		store:       store,
		sprites:     opts.Sprites,
		runs:        opts.Runs,
		log:         log,
		limit:       opts.Limit,
		concurrency: opts.Concurrency,
		now:         time.Now,
	}
}

// Seed fetches every missing id and inserts the results in batches.
// Entries that fail to fetch are logged and listed in the run's Failed ids.
func (im *Importer) Seed(ctx context.Context) (*models.ImportRun, error) {
	return im.seed(ctx, false)
}

// Reset clears the catalog and its mirrored sprites, then seeds again.
func (im *Importer) Reset(ctx context.Context) (*models.ImportRun, error) {
	if err := im.store.ClearCatalog(ctx); err != nil {
		return nil, err
	}
	if im.sprites != nil {
		if err := im.sprites.RemoveAll(ctx, spritePrefix); err != nil {
			im.log.Warn("remove mirrored sprites", zap.Error(err))
		}
	}
	return im.seed(ctx, true)
}

func (im *Importer) seed(ctx context.Context, reset bool) (*models.ImportRun, error) {
	run := &models.ImportRun{
		ID:        uuid.NewString(),
		StartedAt: im.now().UTC(),
		Requested: im.limit,
		Failed:    []int64{},
		Reset:     reset,
	}
	im.log.Info("seeding catalog", zap.Int("limit", im.limit), zap.Bool("reset", reset))

	ids := make([]int64, 0, im.limit)
	for i := 1; i <= im.limit; i++ {
		ids = append(ids, int64(i))
	}
	existing, err := im.store.ExistingPokemonIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	todo := make([]int64, 0, len(ids))
	for _, id := range ids {
		if existing[id] {
			run.Skipped++
			continue
		}
		todo = append(todo, id)
	}

	for start := 0; start < len(todo); start += batchSize {
		end := min(start+batchSize, len(todo))
		fetched, failed, err := im.fetchBatch(ctx, todo[start:end])
		if err != nil {
			return nil, err
		}
		run.Failed = append(run.Failed, failed...)
		if len(fetched) == 0 {
			continue
		}
		n, err := im.store.InsertPokemon(ctx, fetched)
		if err != nil {
			return nil, fmt.Errorf("insert batch at id %d: %w", todo[start], err)
		}
		run.Seeded += n
		im.log.Info("committed batch", zap.Int64("through_id", todo[end-1]), zap.Int("inserted", n))
	}

	sort.Slice(run.Failed, func(i, j int) bool { return run.Failed[i] < run.Failed[j] })
	run.FinishedAt = im.now().UTC()
	im.log.Info("seeding finished",
		zap.Int("seeded", run.Seeded),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", len(run.Failed)),
	)

	if im.runs != nil {
		if err := im.runs.InsertRun(ctx, run); err != nil {
			im.log.Warn("record import run", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	return run, nil
}

// fetchBatch loads ids concurrently. Per-entry failures are collected; only
// cancellation of ctx aborts the batch.
func (im *Importer) fetchBatch(ctx context.Context, ids []int64) ([]models.Pokemon, []int64, error) {
	results := make([]*models.Pokemon, len(ids))
	var (
		mu     sync.Mutex
		failed []int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			p, err := im.fetch.FetchPokemon(gctx, id)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				im.log.Warn("fetch pokemon", zap.Int64("id", id), zap.Error(err))
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
				return nil
			}
			im.mirrorSprite(gctx, p)
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]models.Pokemon, 0, len(ids))
	for _, p := range results {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, failed, nil
}

// mirrorSprite copies the upstream sprite into object storage and points
// the entry at the local copy. The upstream URL is kept on failure.
func (im *Importer) mirrorSprite(ctx context.Context, p *models.Pokemon) {
	if im.sprites == nil || p.SpriteURL == nil {
		return
	}
	data, contentType, err := im.fetch.FetchSprite(ctx, *p.SpriteURL)
	if err != nil {
		im.log.Warn("fetch sprite", zap.Int64("id", p.ID), zap.Error(err))
		return
	}
	file := fmt.Sprintf("%d.png", p.ID)
	if err := im.sprites.Upload(ctx, spritePrefix+file, data, contentType); err != nil {
		im.log.Warn("mirror sprite", zap.Int64("id", p.ID), zap.Error(err))
		return
	}
	local := "/sprites/" + file
	p.SpriteURL = &local
}
