package sqlite

import (
	"context"
	"testing"

	"github.com/poiesic/domicil/core"
	"github.com/poiesic/domicil/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64       { return &v }
func intPtr(v int) *int             { return &v }
func float64Ptr(v float64) *float64 { return &v }

func seedListings(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	err := s.AddListings(ctx,
		core.Listing{
			ID: "l-1", Title: "Rumah Cemara Asri 2 Lantai",
			Description:  "Modern house in a gated community",
			Price:        850_000_000,
			PropertyType: core.PropertyHouse, ListingType: core.ListingSale,
			Bedrooms: 3, Bathrooms: 2, Floors: 2,
			Location: core.Location{
				Address: "Jl. Cemara Boulevard No. 5", City: "Medan",
				District: "Percut Sei Tuan", Lat: 3.625, Lng: 98.72,
			},
		},
		core.Listing{
			ID: "l-2", Title: "Rumah Minimalis Cemara Hijau",
			Description:  "Compact starter home near schools",
			Price:        450_000_000,
			PropertyType: core.PropertyHouse, ListingType: core.ListingSale,
			Bedrooms: 2, Bathrooms: 1, Floors: 1,
			Location: core.Location{
				Address: "Jl. Cemara Hijau No. 21", City: "Medan",
				District: "Medan Timur", Lat: 3.61, Lng: 98.69,
			},
		},
		core.Listing{
			ID: "l-3", Title: "Ruko Strategis Pusat Kota",
			Description:  "Shophouse on the main road",
			Price:        2_100_000_000,
			PropertyType: core.PropertyShop, ListingType: core.ListingSale,
			Bedrooms: 0, Bathrooms: 2, Floors: 3,
			Location: core.Location{
				Address: "Jl. Asia No. 88", City: "Medan",
				District: "Medan Kota", Lat: 3.58, Lng: 98.68,
			},
		},
	)
	require.NoError(t, err)
}

func TestAddAndGetListings(t *testing.T) {
	s, err := NewMemoryStore()
	require.NoError(t, err)
	defer s.Close()

	seedListings(t, s)
	ctx := context.Background()

	t.Run("get by id", func(t *testing.T) {
		l, err := s.GetListing(ctx, "l-2")
		require.NoError(t, err)
		assert.Equal(t, "Rumah Minimalis Cemara Hijau", l.Title)
		assert.Equal(t, int64(450_000_000), l.Price)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := s.GetListing(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("get many skips missing", func(t *testing.T) {
		listings, err := s.GetListings(ctx, "l-1", "nope", "l-3")
		require.NoError(t, err)
		assert.Len(t, listings, 2)
	})

	t.Run("count", func(t *testing.T) {
		n, err := s.CountListings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("replace on duplicate id", func(t *testing.T) {
		err := s.AddListings(ctx, core.Listing{
			ID: "l-1", Title: "Rumah Cemara Asri 2 Lantai (renovated)",
			PropertyType: core.PropertyHouse, ListingType: core.ListingSale,
			Price: 900_000_000,
		})
		require.NoError(t, err)

		n, err := s.CountListings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("invalid listing rejected", func(t *testing.T) {
		err := s.AddListings(ctx, core.Listing{Title: "no id"})
		assert.ErrorIs(t, err, core.ErrInvalidListing)
	})
}

func TestFindByFilter(t *testing.T) {
	s, err := NewMemoryStore()
	require.NoError(t, err)
	defer s.Close()

	seedListings(t, s)
	ctx := context.Background()

	t.Run("price range inclusive", func(t *testing.T) {
		listings, total, err := s.FindByFilter(ctx, core.ListingFilter{
			PriceMin: int64Ptr(450_000_000),
			PriceMax: int64Ptr(850_000_000),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, listings, 2)
	})

	t.Run("enum equality is case-insensitive", func(t *testing.T) {
		listings, _, err := s.FindByFilter(ctx, core.ListingFilter{PropertyType: "HOUSE"})
		require.NoError(t, err)
		assert.Len(t, listings, 2)
	})

	t.Run("location keyword ORs across fields", func(t *testing.T) {
		// "cemara" appears in l-1's address and l-2's title/address, never in city.
		listings, total, err := s.FindByFilter(ctx, core.ListingFilter{LocationKeyword: "cemara"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		ids := []string{listings[0].ID, listings[1].ID}
		assert.ElementsMatch(t, []string{"l-1", "l-2"}, ids)
	})

	t.Run("store-native order is insertion order", func(t *testing.T) {
		listings, _, err := s.FindByFilter(ctx, core.ListingFilter{LocationKeyword: "medan"})
		require.NoError(t, err)
		require.Len(t, listings, 3)
		assert.Equal(t, "l-1", listings[0].ID)
		assert.Equal(t, "l-3", listings[2].ID)
	})

	t.Run("bedroom range", func(t *testing.T) {
		listings, _, err := s.FindByFilter(ctx, core.ListingFilter{
			BedroomsMin: intPtr(3),
		})
		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Equal(t, "l-1", listings[0].ID)
	})

	t.Run("limit caps results but not total", func(t *testing.T) {
		listings, total, err := s.FindByFilter(ctx, core.ListingFilter{
			LocationKeyword: "medan",
			Limit:           2,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, listings, 2)
	})

	t.Run("no matches is empty, not an error", func(t *testing.T) {
		listings, total, err := s.FindByFilter(ctx, core.ListingFilter{
			PropertyType: core.PropertyWarehouse,
		})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, listings)
	})

	t.Run("radius filter", func(t *testing.T) {
		// l-1 and l-2 sit more than 3 km from the city-center point.
		listings, total, err := s.FindByFilter(ctx, core.ListingFilter{
			Center:   &core.Coordinates{Lat: 3.58, Lng: 98.68},
			RadiusKm: float64Ptr(2.5),
		})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		assert.Equal(t, "l-3", listings[0].ID)
	})
}
