package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/domicil/ai"
	"github.com/poiesic/domicil/core"
	"github.com/poiesic/domicil/storage"
)

const (
	// DefaultInterval is the pause between periodic sync passes.
	DefaultInterval = 5 * time.Minute

	// DefaultBatchSize is how many listings one embedding call carries.
	DefaultBatchSize = 32

	// DefaultWorkers is how many batches embed concurrently.
	DefaultWorkers = 2
)

// Indexer synchronizes the vector index with the listing store.
type Indexer struct {
	repo      storage.ListingRepository
	index     storage.VectorIndex
	embedder  ai.Embedder
	interval  time.Duration
	batchSize int
	pool      *ants.Pool
	logger    *slog.Logger
	trigger   chan struct{}
}

// Option modifies an Indexer during construction.
type Option func(*Indexer) error

// WithInterval sets the pause between periodic sync passes.
func WithInterval(d time.Duration) Option {
	return func(ix *Indexer) error {
		if d <= 0 {
			return fmt.Errorf("sync interval must be positive, got %v", d)
		}
		ix.interval = d
		return nil
	}
}

// WithBatchSize sets how many listings one embedding call carries.
func WithBatchSize(n int) Option {
	return func(ix *Indexer) error {
		if n <= 0 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		ix.batchSize = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates a sync worker over the given store, index and embedder.
// Workers sets the embedding concurrency; values below one use the default.
func NewIndexer(repo storage.ListingRepository, index storage.VectorIndex, embedder ai.Embedder, workers int, opts ...Option) (*Indexer, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}

	ix := &Indexer{
		repo:      repo,
		index:     index,
		embedder:  embedder,
		interval:  DefaultInterval,
		batchSize: DefaultBatchSize,
		pool:      pool,
		logger:    slog.Default().With("component", "indexer"),
		trigger:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			pool.Release()
			return nil, err
		}
	}
	return ix, nil
}

// Close releases the embedding pool. A running Run loop must be stopped
// via its context first.
func (ix *Indexer) Close() error {
	ix.pool.Release()
	return nil
}

// Trigger requests an immediate sync pass from a running Run loop.
// Non-blocking; a pending request coalesces with the new one.
func (ix *Indexer) Trigger() {
	select {
	case ix.trigger <- struct{}{}:
	default:
	}
}

// Run executes sync passes until the context is cancelled: one immediately,
// then on every interval tick and every Trigger call. Pass failures are
// logged and the loop keeps going; a dead embedder now does not stop the
// index from catching up later.
func (ix *Indexer) Run(ctx context.Context) {
	ticker := time.NewTicker(ix.interval)
	defer ticker.Stop()

	ix.runPass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ix.runPass(ctx)
		case <-ix.trigger:
			ix.runPass(ctx)
		}
	}
}

func (ix *Indexer) runPass(ctx context.Context) {
	if err := ix.SyncNow(ctx); err != nil && ctx.Err() == nil {
		ix.logger.Error("sync pass failed", "error", err)
	}
}

// SyncNow runs one full sync pass: every stored listing is embedded and
// upserted into the index, then the watermark is advanced. Batches embed
// concurrently on the worker pool.
func (ix *Indexer) SyncNow(ctx context.Context) error {
	start := time.Now()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		indexed  int
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}

		batch, err := ix.repo.ListListings(ctx, ix.batchSize, offset)
		if err != nil {
			fail(fmt.Errorf("list listings at offset %d: %w", offset, err))
			break
		}
		if len(batch) == 0 {
			break
		}
		offset += len(batch)

		wg.Add(1)
		task := func() {
			defer wg.Done()
			n, err := ix.syncBatch(ctx, batch)
			if err != nil {
				fail(err)
				return
			}
			mu.Lock()
			indexed += n
			mu.Unlock()
		}
		if err := ix.pool.Submit(task); err != nil {
			wg.Done()
			fail(fmt.Errorf("submit embedding batch: %w", err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ix.index.SetLastSyncedAt(ctx, time.Now()); err != nil {
		return fmt.Errorf("record sync watermark: %w", err)
	}

	ix.logger.Info("index sync done", "indexed", indexed, "elapsed", time.Since(start))
	return nil
}

func (ix *Indexer) syncBatch(ctx context.Context, batch []core.Listing) (int, error) {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].EmbeddingText()
	}

	vectors, err := ix.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed batch of %d: %w", len(batch), err)
	}
	if len(vectors) != len(batch) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
	}

	now := time.Now()
	entries := make([]core.VectorEntry, len(batch))
	for i := range batch {
		entries[i] = core.VectorEntry{
			ListingID:    batch[i].ID,
			Vector:       normalizeVector(vectors[i]),
			PropertyType: batch[i].PropertyType,
			ListingType:  batch[i].ListingType,
			UpdatedAt:    now,
		}
	}

	if err := ix.index.Upsert(ctx, entries...); err != nil {
		return 0, fmt.Errorf("upsert batch of %d: %w", len(entries), err)
	}
	return len(entries), nil
}

// normalizeVector scales a vector to unit length so cosine similarity
// reduces to a dot product at query time. Zero vectors pass through.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return v
	}
	norm := float32(1.0 / math.Sqrt(sumSquares))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x * norm
	}
	return out
}
