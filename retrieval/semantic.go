package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/domicil/ai"
	"github.com/poiesic/domicil/core"
	"github.com/poiesic/domicil/storage"
)

// SemanticHit is one similarity search result: the hydrated listing plus
// its cosine similarity to the query.
type SemanticHit struct {
	Listing core.Listing
	Score   float64
}

// SemanticSearcher answers constraint sets by embedding similarity. It
// implements SemanticSource.
//
// A search embeds the query text, scans the vector index, drops hits whose
// indexed metadata contradicts the set's enum constraints, then hydrates
// the survivors from the record store. Index entries whose listing has
// since been deleted are skipped silently; staleness between store and
// index is expected between sync runs.
type SemanticSearcher struct {
	embedder ai.Embedder
	index    storage.VectorIndex
	repo     storage.ListingRepository
	floor    float64
	logger   *slog.Logger
}

// SemanticOption modifies a SemanticSearcher during construction.
type SemanticOption func(*SemanticSearcher)

// WithSemanticLogger sets the logger.
func WithSemanticLogger(logger *slog.Logger) SemanticOption {
	return func(s *SemanticSearcher) {
		s.logger = logger
	}
}

// WithFloor overrides the minimum cosine similarity for hits.
func WithFloor(floor float64) SemanticOption {
	return func(s *SemanticSearcher) {
		s.floor = floor
	}
}

// NewSemanticSearcher creates a semantic search adapter over an embedder,
// a vector index and the listing repository used for hydration.
func NewSemanticSearcher(embedder ai.Embedder, index storage.VectorIndex, repo storage.ListingRepository, opts ...SemanticOption) *SemanticSearcher {
	s := &SemanticSearcher{
		embedder: embedder,
		index:    index,
		repo:     repo,
		floor:    DefaultSimilarityFloor,
		logger:   slog.Default().With("component", "semantic-search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns up to topK semantic hits above the similarity floor,
// ordered by similarity descending.
//
// A constraint set with no semantic content (only numeric ranges, say)
// yields an empty result without touching the embedder: there is no text
// whose meaning the index could match.
func (s *SemanticSearcher) Search(ctx context.Context, cs *core.ConstraintSet, topK int) ([]SemanticHit, error) {
	text := cs.SemanticQueryText()
	if text == "" {
		return nil, nil
	}

	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, classifySourceError("embed query", err)
	}

	matches, err := s.index.NearestNeighbors(ctx, vector, topK, s.floor)
	if err != nil {
		return nil, classifySourceError("vector search", err)
	}

	matches = filterByMetadata(matches, cs)
	if len(matches) == 0 {
		return nil, nil
	}

	hits, err := s.hydrate(ctx, matches)
	if err != nil {
		return nil, classifySourceError("hydrate hits", err)
	}

	s.logger.Debug("semantic search done", "query", text, "hits", len(hits))
	return hits, nil
}

// IndexAge returns the time since the vector index last synced, or false
// if it never has.
func (s *SemanticSearcher) IndexAge(ctx context.Context) (time.Duration, bool) {
	syncedAt, err := s.index.LastSyncedAt(ctx)
	if err != nil || syncedAt.IsZero() {
		return 0, false
	}
	return time.Since(syncedAt), true
}

// filterByMetadata drops matches whose indexed enum metadata contradicts
// the constraint set. Entries without metadata pass; the evaluator catches
// what slips through.
func filterByMetadata(matches []storage.VectorMatch, cs *core.ConstraintSet) []storage.VectorMatch {
	out := matches[:0]
	for _, m := range matches {
		if cs.PropertyType != "" && m.Entry.PropertyType != "" &&
			!strings.EqualFold(m.Entry.PropertyType, cs.PropertyType) {
			continue
		}
		if cs.ListingType != "" && m.Entry.ListingType != "" &&
			!strings.EqualFold(m.Entry.ListingType, cs.ListingType) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *SemanticSearcher) hydrate(ctx context.Context, matches []storage.VectorMatch) ([]SemanticHit, error) {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.Entry.ListingID
	}

	listings, err := s.repo.GetListings(ctx, ids...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*core.Listing, len(listings))
	for i := range listings {
		byID[listings[i].ID] = &listings[i]
	}

	hits := make([]SemanticHit, 0, len(matches))
	for _, m := range matches {
		l, ok := byID[m.Entry.ListingID]
		if !ok {
			s.logger.Debug("skipping stale index entry", "listing_id", m.Entry.ListingID)
			continue
		}
		hits = append(hits, SemanticHit{Listing: *l, Score: m.Score})
	}
	return hits, nil
}
