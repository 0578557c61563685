package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// IDFromContent derives a stable listing ID from text content using BLAKE2b hashing.
// Seeders use it when the source data carries no identifier of its own, so the same
// record ingested twice never produces a duplicate row.
func IDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return fmt.Sprintf("l-%016x", binary.LittleEndian.Uint64(sum))
}

// Property type values understood by the structured store and the
// constraint parser. Matching is case-insensitive everywhere.
const (
	PropertyHouse     = "house"
	PropertyApartment = "apartment"
	PropertyShop      = "shop"
	PropertyLand      = "land"
	PropertyWarehouse = "warehouse"
)

// Listing type values (transaction kind).
const (
	ListingSale = "sale"
	ListingRent = "rent"
)

// PropertyTypes lists the valid property type values.
var PropertyTypes = []string{
	PropertyHouse,
	PropertyApartment,
	PropertyShop,
	PropertyLand,
	PropertyWarehouse,
}

// ListingTypes lists the valid listing type values.
var ListingTypes = []string{
	ListingSale,
	ListingRent,
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64
	Lng float64
}

// earthRadiusKm is the mean Earth radius used by the haversine distance.
const earthRadiusKm = 6371.0

// DistanceKm returns the haversine distance to another point in kilometers.
func (c Coordinates) DistanceKm(other Coordinates) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(other.Lat - c.Lat)
	dLng := toRad(other.Lng - c.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(c.Lat))*math.Cos(toRad(other.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Location describes where a listing is.
type Location struct {
	Address  string
	City     string
	District string
	Lat      float64
	Lng      float64
}

// Listing is a single property record. Listings are owned by the ingestion
// job; the retrieval path treats them as immutable snapshots for the
// duration of one query.
type Listing struct {
	ID           string
	Title        string
	Description  string
	Price        int64
	PropertyType string
	ListingType  string
	Bedrooms     int
	Bathrooms    int
	Floors       int
	LandArea     float64
	BuildingArea float64
	Location     Location
}

// EmbeddingText composes the text representation of a listing that gets
// embedded into the vector index. Queries are embedded with the same
// composition rules so both sides live in the same vector space.
func (l *Listing) EmbeddingText() string {
	parts := make([]string, 0, 6)
	if l.Title != "" {
		parts = append(parts, l.Title)
	}
	if l.Description != "" {
		parts = append(parts, l.Description)
	}
	if l.PropertyType != "" {
		parts = append(parts, l.PropertyType)
	}
	if l.ListingType != "" {
		parts = append(parts, "for "+l.ListingType)
	}
	if l.Location.District != "" {
		parts = append(parts, l.Location.District)
	}
	if l.Location.City != "" {
		parts = append(parts, l.Location.City)
	}
	return strings.Join(parts, ". ")
}

// ConstraintSet is the normalized representation of a user's search intent.
// It is produced by the constraint extraction service and consumed by the
// retrieval engine. Nil pointer fields mean "not constrained".
type ConstraintSet struct {
	LocationKeyword string
	PriceMin        *int64
	PriceMax        *int64
	BedroomsMin     *int
	BedroomsMax     *int
	FloorsMin       *int
	FloorsMax       *int
	PropertyType    string
	ListingType     string
	FreeText        string
	Coordinates     *Coordinates
	RadiusKm        *float64
}

// IsEmpty reports whether no constraint at all is present.
func (c *ConstraintSet) IsEmpty() bool {
	return c.LocationKeyword == "" &&
		c.PriceMin == nil && c.PriceMax == nil &&
		c.BedroomsMin == nil && c.BedroomsMax == nil &&
		c.FloorsMin == nil && c.FloorsMax == nil &&
		c.PropertyType == "" && c.ListingType == "" &&
		c.FreeText == "" && c.Coordinates == nil
}

// SemanticQueryText builds the free-text query sent to the embedder. Residual
// free text is widened with the location keyword and enum hints so the index
// can recall vocabulary the structured store cannot match (amenities,
// proximity phrases, synonyms).
func (c *ConstraintSet) SemanticQueryText() string {
	parts := make([]string, 0, 4)
	if c.FreeText != "" {
		parts = append(parts, c.FreeText)
	}
	if c.PropertyType != "" {
		parts = append(parts, c.PropertyType)
	}
	if c.ListingType != "" {
		parts = append(parts, "for "+c.ListingType)
	}
	if c.LocationKeyword != "" {
		parts = append(parts, "in "+c.LocationKeyword)
	}
	return strings.Join(parts, " ")
}

// ListingFilter is the storage-facing form of a ConstraintSet: the subset of
// constraints the record store can answer exactly. Built by the structured
// search adapter, consumed by ListingRepository.FindByFilter.
type ListingFilter struct {
	LocationKeyword string
	PriceMin        *int64
	PriceMax        *int64
	BedroomsMin     *int
	BedroomsMax     *int
	FloorsMin       *int
	FloorsMax       *int
	PropertyType    string
	ListingType     string
	Center          *Coordinates
	RadiusKm        *float64
	Limit           int
}

// VectorEntry is one record in the embedding index: the listing's unit
// vector plus the metadata fields the semantic post-filter needs without
// hydrating the full listing.
type VectorEntry struct {
	ListingID    string
	Vector       []float32
	PropertyType string
	ListingType  string
	UpdatedAt    time.Time
}
