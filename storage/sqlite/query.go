package sqlite

import (
	"context"
	"math"
	"strings"

	"github.com/poiesic/domicil/core"
)

// FindByFilter applies every set field of the filter as a predicate and
// returns matching listings in insertion order plus the total match count.
//
// Radius filtering runs in two stages: a bounding-box predicate in SQL to
// keep the scan cheap, then an exact haversine check on the fetched rows.
func (s *Store) FindByFilter(ctx context.Context, filter core.ListingFilter) ([]core.Listing, int, error) {
	where, args := buildWhere(filter)

	query := `SELECT ` + listingColumns + ` FROM listings`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}

	if filter.Center != nil && filter.RadiusKm != nil {
		listings = filterByRadius(listings, *filter.Center, *filter.RadiusKm)
	}

	total := len(listings)
	if filter.Limit > 0 && len(listings) > filter.Limit {
		listings = listings[:filter.Limit]
	}
	return listings, total, nil
}

func buildWhere(filter core.ListingFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.PriceMin != nil {
		clauses = append(clauses, `price >= ?`)
		args = append(args, *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		clauses = append(clauses, `price <= ?`)
		args = append(args, *filter.PriceMax)
	}
	if filter.BedroomsMin != nil {
		clauses = append(clauses, `bedrooms >= ?`)
		args = append(args, *filter.BedroomsMin)
	}
	if filter.BedroomsMax != nil {
		clauses = append(clauses, `bedrooms <= ?`)
		args = append(args, *filter.BedroomsMax)
	}
	if filter.FloorsMin != nil {
		clauses = append(clauses, `floors >= ?`)
		args = append(args, *filter.FloorsMin)
	}
	if filter.FloorsMax != nil {
		clauses = append(clauses, `floors <= ?`)
		args = append(args, *filter.FloorsMax)
	}
	if filter.PropertyType != "" {
		clauses = append(clauses, `LOWER(property_type) = LOWER(?)`)
		args = append(args, filter.PropertyType)
	}
	if filter.ListingType != "" {
		clauses = append(clauses, `LOWER(listing_type) = LOWER(?)`)
		args = append(args, filter.ListingType)
	}

	if filter.LocationKeyword != "" {
		// OR-combined across the location-bearing fields, not AND.
		pattern := "%" + strings.ToLower(filter.LocationKeyword) + "%"
		clauses = append(clauses,
			`(LOWER(address) LIKE ? OR LOWER(district) LIKE ? OR LOWER(city) LIKE ? OR LOWER(title) LIKE ?)`)
		args = append(args, pattern, pattern, pattern, pattern)
	}

	if filter.Center != nil && filter.RadiusKm != nil {
		latDelta := *filter.RadiusKm / 111.0 // ~111 km per degree of latitude
		lngDelta := latDelta
		if cosLat := math.Cos(filter.Center.Lat * math.Pi / 180); cosLat > 0.01 {
			lngDelta = latDelta / cosLat
		}
		clauses = append(clauses, `lat BETWEEN ? AND ?`, `lng BETWEEN ? AND ?`)
		args = append(args,
			filter.Center.Lat-latDelta, filter.Center.Lat+latDelta,
			filter.Center.Lng-lngDelta, filter.Center.Lng+lngDelta)
	}

	return strings.Join(clauses, " AND "), args
}

func filterByRadius(listings []core.Listing, center core.Coordinates, radiusKm float64) []core.Listing {
	out := listings[:0]
	for _, l := range listings {
		at := core.Coordinates{Lat: l.Location.Lat, Lng: l.Location.Lng}
		if center.DistanceKm(at) <= radiusKm {
			out = append(out, l)
		}
	}
	return out
}
