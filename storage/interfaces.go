package storage

import (
	"context"
	"time"

	"github.com/poiesic/domicil/core"
)

// ListingRepository provides exact-filter operations over the listing record
// store. Implementations must be thread-safe; all reads are side-effect free.
type ListingRepository interface {
	// AddListings inserts or replaces listings by ID.
	AddListings(ctx context.Context, listings ...core.Listing) error

	// GetListing retrieves a single listing by ID.
	// Returns ErrNotFound if the listing doesn't exist.
	GetListing(ctx context.Context, id string) (*core.Listing, error)

	// GetListings retrieves multiple listings by their IDs.
	// Returns only the listings that exist (no error for missing IDs).
	GetListings(ctx context.Context, ids ...string) ([]core.Listing, error)

	// FindByFilter applies every set field of the filter as a predicate and
	// returns matching listings in store-native order plus the total match
	// count before the limit was applied.
	FindByFilter(ctx context.Context, filter core.ListingFilter) ([]core.Listing, int, error)

	// ListListings pages through all listings in store-native order.
	// Used by the index sync job, not by the retrieval path.
	ListListings(ctx context.Context, limit, offset int) ([]core.Listing, error)

	// CountListings returns the total number of stored listings.
	CountListings(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// VectorMatch is one nearest-neighbor hit: the stored entry plus its cosine
// similarity to the query vector (higher is better).
type VectorMatch struct {
	Entry core.VectorEntry
	Score float64
}

// VectorIndex provides nearest-neighbor search over listing embeddings.
// Implementations must be thread-safe and tolerate concurrent sync writes.
type VectorIndex interface {
	// Upsert inserts or replaces index entries by listing ID.
	Upsert(ctx context.Context, entries ...core.VectorEntry) error

	// Delete removes index entries by listing ID. Missing IDs are ignored.
	Delete(ctx context.Context, ids ...string) error

	// NearestNeighbors returns up to k entries with cosine similarity
	// >= minSimilarity, ordered by similarity descending.
	NearestNeighbors(ctx context.Context, vector []float32, k int, minSimilarity float64) ([]VectorMatch, error)

	// Count returns the number of indexed entries.
	Count(ctx context.Context) (int, error)

	// LastSyncedAt returns the watermark written by the sync job.
	// Returns the zero time if no sync has completed yet.
	LastSyncedAt(ctx context.Context) (time.Time, error)

	// SetLastSyncedAt records the sync watermark.
	SetLastSyncedAt(ctx context.Context, t time.Time) error

	// Close closes the index and releases resources.
	Close() error
}
