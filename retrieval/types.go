package retrieval

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/domicil/core"
)

// Strategy selects which sources a retrieval consults.
type Strategy int

const (
	// StrategyHybrid consults both sources: structured results re-ranked by
	// semantic similarity, with semantic fallback when structured finds
	// nothing. The zero value, and the right default for natural-language
	// queries.
	StrategyHybrid Strategy = iota

	// StrategyStructured consults only the exact-filter record store.
	StrategyStructured

	// StrategySemantic consults only the embedding index.
	StrategySemantic
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyHybrid:
		return "hybrid"
	case StrategyStructured:
		return "structured"
	case StrategySemantic:
		return "semantic"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy resolves a strategy from its name, case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hybrid", "":
		return StrategyHybrid, nil
	case "structured":
		return StrategyStructured, nil
	case "semantic":
		return StrategySemantic, nil
	default:
		return StrategyHybrid, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Source identifies which backend produced a candidate.
type Source int

const (
	// SourceStructured marks candidates returned by the record store.
	SourceStructured Source = iota + 1

	// SourceSemantic marks candidates surfaced only by the vector index.
	SourceSemantic
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceStructured:
		return "structured"
	case SourceSemantic:
		return "semantic"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Candidate is one ranked retrieval hit with its full scoring breakdown.
type Candidate struct {
	Listing core.Listing

	// Source names the backend the candidate came from. Fused candidates
	// always carry SourceStructured: semantic similarity re-ranks the
	// structured result set, it never injects listings into it.
	Source Source

	// StructuredRank is the 1-based position in the structured result
	// order. Zero for candidates that only the semantic index produced.
	StructuredRank int

	// SemanticScore is the cosine similarity of the listing to the query,
	// zero when the semantic source did not score it.
	SemanticScore float64

	// PositionScore rewards early structured positions: 1.0 for the first
	// result, descending linearly to 1/total for the last.
	PositionScore float64

	// FusedScore is the weighted blend the final ordering is based on.
	FusedScore float64
}

// Retrieval paths recorded in Diagnostics.Path.
const (
	PathStructuredOnly = "structured-only"
	PathSemanticOnly   = "semantic-only"
	PathHybridFused    = "hybrid-fused"
	PathHybridFallback = "hybrid-fallback"
	PathCorrectEmpty   = "correct-empty"
)

// Diagnostics describes how a retrieval was answered. It exists so an empty
// or surprising result can be traced without re-running the query.
type Diagnostics struct {
	// Path names the branch that produced the result.
	Path string

	// SourceErrors collects failures of sources the engine degraded around.
	// A hard error returns instead of being recorded here.
	SourceErrors []string

	// StructuredTotal is the structured match count before any cap.
	StructuredTotal int

	// SemanticHits is the number of semantic hits above the similarity
	// floor, before any cap.
	SemanticHits int

	// IndexAge is the time since the vector index last synced. Negative
	// when no probe is wired or the index has never synced.
	IndexAge time.Duration

	// FanoutQueries is the number of per-point sub-queries a proximity
	// retrieval ran. Zero for plain retrievals.
	FanoutQueries int

	// Elapsed is the wall time of the whole retrieval.
	Elapsed time.Duration
}

// Result is the complete answer to one retrieval: ranked candidates, the
// constraint evaluation over them, and diagnostics.
type Result struct {
	Candidates  []Candidate
	Evaluation  Evaluation
	Diagnostics Diagnostics
}

// Listings returns the candidate listings in ranked order.
func (r *Result) Listings() []core.Listing {
	out := make([]core.Listing, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = c.Listing
	}
	return out
}
