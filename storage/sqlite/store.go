package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/poiesic/domicil/core"
	"github.com/poiesic/domicil/storage"
)

const listingColumns = `id, title, description, price, property_type, listing_type,
bedrooms, bathrooms, floors, land_area, building_area,
address, city, district, lat, lng`

// Store implements storage.ListingRepository on SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.ListingRepository = (*Store)(nil)

// OpenStore opens (and if necessary creates) a listing database at path.
// Pass ":memory:" for an in-memory store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db:     db,
		logger: slog.Default().With("component", "sqlite-store"),
	}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	const createTable = `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price INTEGER NOT NULL DEFAULT 0,
  property_type TEXT NOT NULL DEFAULT '',
  listing_type TEXT NOT NULL DEFAULT '',
  bedrooms INTEGER NOT NULL DEFAULT 0,
  bathrooms INTEGER NOT NULL DEFAULT 0,
  floors INTEGER NOT NULL DEFAULT 0,
  land_area REAL NOT NULL DEFAULT 0,
  building_area REAL NOT NULL DEFAULT 0,
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  district TEXT NOT NULL DEFAULT '',
  lat REAL NOT NULL DEFAULT 0,
  lng REAL NOT NULL DEFAULT 0
);
`
	if _, err := s.db.Exec(createTable); err != nil {
		return err
	}
	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city);`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// AddListings inserts or replaces listings by ID in a single transaction.
func (s *Store) AddListings(ctx context.Context, listings ...core.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	for i := range listings {
		if err := core.ValidateListing(&listings[i]); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO listings
(`+listingColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err := stmt.ExecContext(ctx,
			l.ID, l.Title, l.Description, l.Price,
			strings.ToLower(l.PropertyType), strings.ToLower(l.ListingType),
			l.Bedrooms, l.Bathrooms, l.Floors, l.LandArea, l.BuildingArea,
			l.Location.Address, l.Location.City, l.Location.District,
			l.Location.Lat, l.Location.Lng,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetListing retrieves a single listing by ID.
func (s *Store) GetListing(ctx context.Context, id string) (*core.Listing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: listing %q", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetListings retrieves multiple listings by their IDs. Missing IDs are
// skipped without error.
func (s *Store) GetListings(ctx context.Context, ids ...string) ([]core.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id IN (`+placeholders+`) ORDER BY rowid`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanListings(rows)
}

// ListListings pages through all listings in insertion order.
func (s *Store) ListListings(ctx context.Context, limit, offset int) ([]core.Listing, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY rowid LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanListings(rows)
}

// CountListings returns the total number of stored listings.
func (s *Store) CountListings(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*core.Listing, error) {
	var l core.Listing
	err := row.Scan(
		&l.ID, &l.Title, &l.Description, &l.Price, &l.PropertyType, &l.ListingType,
		&l.Bedrooms, &l.Bathrooms, &l.Floors, &l.LandArea, &l.BuildingArea,
		&l.Location.Address, &l.Location.City, &l.Location.District,
		&l.Location.Lat, &l.Location.Lng,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanListings(rows *sql.Rows) ([]core.Listing, error) {
	var out []core.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
