package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/domicil/core"
	"github.com/poiesic/domicil/storage"
)

// StructuredSearcher answers constraint sets from the exact-filter record
// store. It implements StructuredSource.
type StructuredSearcher struct {
	repo   storage.ListingRepository
	logger *slog.Logger
}

// StructuredOption modifies a StructuredSearcher during construction.
type StructuredOption func(*StructuredSearcher)

// WithStructuredLogger sets the logger.
func WithStructuredLogger(logger *slog.Logger) StructuredOption {
	return func(s *StructuredSearcher) {
		s.logger = logger
	}
}

// NewStructuredSearcher creates a structured search adapter over a listing
// repository.
func NewStructuredSearcher(repo storage.ListingRepository, opts ...StructuredOption) *StructuredSearcher {
	s := &StructuredSearcher{
		repo:   repo,
		logger: slog.Default().With("component", "structured-search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search translates the constraint set into a store filter and runs it.
// Returns the matches in store order plus the pre-limit total.
func (s *StructuredSearcher) Search(ctx context.Context, cs *core.ConstraintSet, limit int) ([]core.Listing, int, error) {
	filter := filterFromConstraints(cs, limit)

	listings, total, err := s.repo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, 0, classifySourceError("structured search", err)
	}

	s.logger.Debug("structured search done", "returned", len(listings), "total", total)
	return listings, total, nil
}

// filterFromConstraints maps the exactly-answerable subset of a constraint
// set onto a store filter. The free-text residual is dropped: the record
// store has no notion of it.
func filterFromConstraints(cs *core.ConstraintSet, limit int) core.ListingFilter {
	return core.ListingFilter{
		LocationKeyword: cs.LocationKeyword,
		PriceMin:        cs.PriceMin,
		PriceMax:        cs.PriceMax,
		BedroomsMin:     cs.BedroomsMin,
		BedroomsMax:     cs.BedroomsMax,
		FloorsMin:       cs.FloorsMin,
		FloorsMax:       cs.FloorsMax,
		PropertyType:    cs.PropertyType,
		ListingType:     cs.ListingType,
		Center:          cs.Coordinates,
		RadiusKm:        cs.RadiusKm,
		Limit:           limit,
	}
}

// classifySourceError maps a backend failure to ErrSourceUnavailable. A
// deadline hit counts as unavailability; caller cancellation propagates
// untouched so it is never mistaken for a source outage.
func classifySourceError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrSourceUnavailable, err)
}
