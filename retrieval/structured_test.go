package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/domicil/core"
	"github.com/poiesic/domicil/storage"
	"github.com/poiesic/domicil/storage/sqlite"
)

func newSeededStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	listings := []core.Listing{
		{
			ID: "l-1", Title: "Rumah Cemara Asri", Price: 850_000_000,
			PropertyType: core.PropertyHouse, ListingType: core.ListingSale, Bedrooms: 3,
			Location: core.Location{District: "Cemara Asri", City: "Medan"},
		},
		{
			ID: "l-2", Title: "Rumah Minimalis Cemara Hijau", Price: 450_000_000,
			PropertyType: core.PropertyHouse, ListingType: core.ListingSale, Bedrooms: 2,
			Location: core.Location{District: "Cemara Hijau", City: "Medan"},
		},
		{
			ID: "l-3", Title: "Ruko Strategis Ringroad", Price: 2_100_000_000,
			PropertyType: core.PropertyShop, ListingType: core.ListingRent, Bedrooms: 0,
			Location: core.Location{District: "Ringroad", City: "Medan"},
		},
	}
	require.NoError(t, store.AddListings(context.Background(), listings...))
	return store
}

func TestStructuredSearcherFiltersByConstraints(t *testing.T) {
	searcher := NewStructuredSearcher(newSeededStore(t))

	cs := &core.ConstraintSet{
		PropertyType: core.PropertyHouse,
		PriceMax:     int64Ptr(900_000_000),
		FreeText:     "taman luas", // residual, must not affect exact matching
	}

	listings, total, err := searcher.Search(context.Background(), cs, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, total)
	require.Len(t, listings, 2)
	assert.Equal(t, "l-1", listings[0].ID)
	assert.Equal(t, "l-2", listings[1].ID)
}

func TestStructuredSearcherAppliesLimitKeepsTotal(t *testing.T) {
	searcher := NewStructuredSearcher(newSeededStore(t))

	cs := &core.ConstraintSet{LocationKeyword: "medan"}

	listings, total, err := searcher.Search(context.Background(), cs, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, total)
	assert.Len(t, listings, 1)
}

func TestStructuredSearcherEmptyMatchIsNotAnError(t *testing.T) {
	searcher := NewStructuredSearcher(newSeededStore(t))

	cs := &core.ConstraintSet{PropertyType: core.PropertyLand}

	listings, total, err := searcher.Search(context.Background(), cs, 10)
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Zero(t, total)
}

type failingRepo struct {
	err error
}

func (r *failingRepo) AddListings(context.Context, ...core.Listing) error { return r.err }
func (r *failingRepo) GetListing(context.Context, string) (*core.Listing, error) {
	return nil, r.err
}
func (r *failingRepo) GetListings(context.Context, ...string) ([]core.Listing, error) {
	return nil, r.err
}
func (r *failingRepo) FindByFilter(context.Context, core.ListingFilter) ([]core.Listing, int, error) {
	return nil, 0, r.err
}
func (r *failingRepo) ListListings(context.Context, int, int) ([]core.Listing, error) {
	return nil, r.err
}
func (r *failingRepo) CountListings(context.Context) (int, error) { return 0, r.err }
func (r *failingRepo) Close() error                               { return nil }

var _ storage.ListingRepository = (*failingRepo)(nil)

func TestStructuredSearcherClassifiesFailures(t *testing.T) {
	t.Run("backend error becomes unavailable", func(t *testing.T) {
		searcher := NewStructuredSearcher(&failingRepo{err: errors.New("disk on fire")})

		_, _, err := searcher.Search(context.Background(), houseConstraints(), 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("timeout becomes unavailable", func(t *testing.T) {
		searcher := NewStructuredSearcher(&failingRepo{err: context.DeadlineExceeded})

		_, _, err := searcher.Search(context.Background(), houseConstraints(), 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("caller cancellation propagates untouched", func(t *testing.T) {
		searcher := NewStructuredSearcher(&failingRepo{err: context.Canceled})

		_, _, err := searcher.Search(context.Background(), houseConstraints(), 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrSourceUnavailable)
	})
}
