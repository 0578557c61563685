package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/domicil/ai/mock"
	"github.com/poiesic/domicil/core"
	"github.com/poiesic/domicil/storage/badger"
)

// semanticFixture wires a mock embedder, an in-memory vector index and an
// in-memory store seeded with three listings. Vectors are hand-made unit
// vectors so similarities are exact: l-1 scores 1.0 against the query
// axis, l-3 scores 0.9, l-2 is orthogonal.
func semanticFixture(t *testing.T) (*mock.MockEmbedder, *SemanticSearcher) {
	t.Helper()

	store := newSeededStore(t)

	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	entries := []core.VectorEntry{
		{ListingID: "l-1", Vector: []float32{1, 0, 0}, PropertyType: core.PropertyHouse, ListingType: core.ListingSale},
		{ListingID: "l-2", Vector: []float32{0, 1, 0}, PropertyType: core.PropertyHouse, ListingType: core.ListingSale},
		{ListingID: "l-3", Vector: []float32{0.9, 0.43589, 0}, PropertyType: core.PropertyShop, ListingType: core.ListingRent},
	}
	require.NoError(t, index.Upsert(context.Background(), entries...))

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	return embedder, NewSemanticSearcher(embedder, index, store)
}

func TestSemanticSearcherRanksBySimilarity(t *testing.T) {
	_, searcher := semanticFixture(t)

	cs := &core.ConstraintSet{FreeText: "rumah asri dekat taman"}
	hits, err := searcher.Search(context.Background(), cs, 10)
	require.NoError(t, err)

	// l-2 sits below the similarity floor and never surfaces.
	require.Len(t, hits, 2)
	assert.Equal(t, "l-1", hits[0].Listing.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "l-3", hits[1].Listing.ID)
	assert.InDelta(t, 0.9, hits[1].Score, 1e-6)
}

func TestSemanticSearcherFiltersByEnumMetadata(t *testing.T) {
	_, searcher := semanticFixture(t)

	cs := &core.ConstraintSet{
		FreeText:     "rumah asri dekat taman",
		PropertyType: core.PropertyHouse,
	}
	hits, err := searcher.Search(context.Background(), cs, 10)
	require.NoError(t, err)

	// l-3 scores 0.9 but is indexed as a shop.
	require.Len(t, hits, 1)
	assert.Equal(t, "l-1", hits[0].Listing.ID)
}

func TestSemanticSearcherSkipsStaleIndexEntries(t *testing.T) {
	store := newSeededStore(t)

	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	// An index entry whose listing was deleted from the store.
	require.NoError(t, index.Upsert(context.Background(),
		core.VectorEntry{ListingID: "l-gone", Vector: []float32{1, 0, 0}},
		core.VectorEntry{ListingID: "l-1", Vector: []float32{0.9, 0.43589, 0}},
	))

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	searcher := NewSemanticSearcher(embedder, index, store)

	hits, err := searcher.Search(context.Background(), &core.ConstraintSet{FreeText: "rumah"}, 10)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "l-1", hits[0].Listing.ID)
}

func TestSemanticSearcherHonorsFloorOption(t *testing.T) {
	store := newSeededStore(t)

	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	require.NoError(t, index.Upsert(context.Background(),
		core.VectorEntry{ListingID: "l-1", Vector: []float32{1, 0, 0}},
		core.VectorEntry{ListingID: "l-2", Vector: []float32{0.9, 0.43589, 0}},
	))

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	searcher := NewSemanticSearcher(embedder, index, store, WithFloor(0.95))

	hits, err := searcher.Search(context.Background(), &core.ConstraintSet{FreeText: "rumah"}, 10)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "l-1", hits[0].Listing.ID)
}

func TestSemanticSearcherSkipsEmbeddingWithoutSemanticContent(t *testing.T) {
	embedder, searcher := semanticFixture(t)

	// Numeric ranges carry no text the index could match.
	cs := &core.ConstraintSet{PriceMin: int64Ptr(100), PriceMax: int64Ptr(200)}
	hits, err := searcher.Search(context.Background(), cs, 10)
	require.NoError(t, err)

	assert.Empty(t, hits)
	assert.Zero(t, embedder.CallCount())
}

func TestSemanticSearcherClassifiesEmbedderFailure(t *testing.T) {
	embedder, searcher := semanticFixture(t)
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model not loaded")
	}

	_, err := searcher.Search(context.Background(), &core.ConstraintSet{FreeText: "rumah"}, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestSemanticSearcherReportsIndexAge(t *testing.T) {
	store := newSeededStore(t)

	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	embedder := mock.NewMockEmbedder()
	searcher := NewSemanticSearcher(embedder, index, store)

	_, ok := searcher.IndexAge(context.Background())
	assert.False(t, ok, "an index that never synced has no age")

	require.NoError(t, index.SetLastSyncedAt(context.Background(), time.Now().Add(-time.Minute)))
	age, ok := searcher.IndexAge(context.Background())
	require.True(t, ok)
	assert.Greater(t, age, 50*time.Second)
}
