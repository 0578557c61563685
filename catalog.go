// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package domicil is a hybrid property listing search engine: exact
// filtering over a SQLite record store combined with embedding similarity
// over a Badger vector index. Catalog is the assembled system; the
// subpackages hold the parts.
package domicil

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/domicil/ai"
	"github.com/poiesic/domicil/ai/openai"
	"github.com/poiesic/domicil/core"
	"github.com/poiesic/domicil/indexer"
	"github.com/poiesic/domicil/retrieval"
	"github.com/poiesic/domicil/storage"
	badgerindex "github.com/poiesic/domicil/storage/badger"
	"github.com/poiesic/domicil/storage/sqlite"
)

// Catalog wires the listing store, the vector index, the AI provider and
// the retrieval engine into one searchable system.
type Catalog struct {
	store    *sqlite.Store
	index    *badgerindex.Index
	provider ai.AIProvider
	engine   *retrieval.Engine
	logger   *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	aiConfig        *ai.Config
	provider        ai.AIProvider
	retrievalConfig *retrieval.Config
	inMemory        bool
}

// WithAIConfig sets the configuration for the default OpenAI-compatible
// provider. Ignored when WithAIProvider is also given.
func WithAIConfig(cfg *ai.Config) CatalogOption {
	return func(o *catalogOptions) {
		o.aiConfig = cfg
	}
}

// WithAIProvider injects an AI provider instead of building the default
// one. The catalog takes ownership and closes it.
func WithAIProvider(provider ai.AIProvider) CatalogOption {
	return func(o *catalogOptions) {
		o.provider = provider
	}
}

// WithRetrievalConfig sets the retrieval engine configuration.
func WithRetrievalConfig(cfg *retrieval.Config) CatalogOption {
	return func(o *catalogOptions) {
		o.retrievalConfig = cfg
	}
}

// WithInMemoryStorage keeps both the record store and the vector index in
// memory. For tests and experiments; the data dir is ignored.
func WithInMemoryStorage() CatalogOption {
	return func(o *catalogOptions) {
		o.inMemory = true
	}
}

// OpenCatalog opens a catalog rooted at dataDir: the record store at
// listings.db, the vector index under vectors/.
func OpenCatalog(dataDir string, opts ...CatalogOption) (*Catalog, error) {
	options := &catalogOptions{
		aiConfig:        ai.DefaultConfig(),
		retrievalConfig: retrieval.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	var (
		store *sqlite.Store
		index *badgerindex.Index
		err   error
	)
	if options.inMemory {
		store, err = sqlite.NewMemoryStore()
	} else {
		store, err = sqlite.OpenStore(filepath.Join(dataDir, "listings.db"))
	}
	if err != nil {
		return nil, err
	}

	if options.inMemory {
		index, err = badgerindex.NewMemoryIndex()
	} else {
		index, err = badgerindex.OpenIndex(filepath.Join(dataDir, "vectors"), false)
	}
	if err != nil {
		store.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			index.Close()
			store.Close()
			return nil, err
		}
	}

	structured := retrieval.NewStructuredSearcher(store)
	semantic := retrieval.NewSemanticSearcher(provider.Embedder(), index, store,
		retrieval.WithFloor(options.retrievalConfig.SimilarityFloor))
	engine, err := retrieval.NewEngine(structured, semantic,
		retrieval.WithConfig(options.retrievalConfig),
		retrieval.WithIndexAgeProbe(semantic.IndexAge))
	if err != nil {
		provider.Close()
		index.Close()
		store.Close()
		return nil, err
	}

	return &Catalog{
		store:    store,
		index:    index,
		provider: provider,
		engine:   engine,
		logger:   slog.Default(),
	}, nil
}

// Close releases every component. Safe to call once.
func (c *Catalog) Close() error {
	if err := c.engine.Close(); err != nil {
		c.logger.Error("error closing retrieval engine", "err", err)
	}
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}
	if err := c.index.Close(); err != nil {
		c.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := c.store.Close(); err != nil {
		c.logger.Error("error closing listing store", "err", err)
		return err
	}
	return nil
}

// AddListings validates and stores listings. The vector index catches up
// on the next sync pass.
func (c *Catalog) AddListings(ctx context.Context, listings ...core.Listing) error {
	return c.store.AddListings(ctx, listings...)
}

// Search answers a natural-language query: constraints are extracted by
// the AI provider, then retrieved with the given strategy.
func (c *Catalog) Search(ctx context.Context, query string, strategy retrieval.Strategy, maxResults int) (*retrieval.Result, error) {
	cs, err := c.provider.ConstraintParser().ParseConstraints(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.engine.Retrieve(ctx, cs, strategy, maxResults)
}

// SearchConstraints retrieves with an already-built constraint set,
// bypassing extraction.
func (c *Catalog) SearchConstraints(ctx context.Context, cs *core.ConstraintSet, strategy retrieval.Strategy, maxResults int) (*retrieval.Result, error) {
	return c.engine.Retrieve(ctx, cs, strategy, maxResults)
}

// SearchNearby retrieves around several points and merges the results.
func (c *Catalog) SearchNearby(ctx context.Context, cs *core.ConstraintSet, points []core.Coordinates, strategy retrieval.Strategy, maxResults int) (*retrieval.Result, error) {
	return c.engine.RetrieveNearby(ctx, cs, points, strategy, maxResults)
}

// NewIndexer creates a sync worker bound to the catalog's store, index and
// embedder.
func (c *Catalog) NewIndexer(workers int, opts ...indexer.Option) (*indexer.Indexer, error) {
	return indexer.NewIndexer(c.store, c.index, c.provider.Embedder(), workers, opts...)
}

// Engine returns the retrieval engine.
func (c *Catalog) Engine() *retrieval.Engine {
	return c.engine
}

// ListingRepository returns the record store.
func (c *Catalog) ListingRepository() storage.ListingRepository {
	return c.store
}

// VectorIndex returns the vector index.
func (c *Catalog) VectorIndex() storage.VectorIndex {
	return c.index
}

// AIProvider returns the AI provider.
func (c *Catalog) AIProvider() ai.AIProvider {
	return c.provider
}
