package retrieval

import (
	"cmp"
	"slices"

	"github.com/poiesic/domicil/core"
)

// positionScore maps a 1-based structured rank to [1/total, 1.0], linearly
// rewarding earlier positions. The structured store already orders by its
// own relevance notion, so position is a cheap proxy for exact-match quality.
func positionScore(rank, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 1.0 - float64(rank-1)/float64(total)
}

// fuseCandidates blends structured position with semantic similarity into a
// single ranking over the structured result set.
//
// Only listings the structured store returned participate: a semantic score
// for a listing outside the set is ignored, and a structured listing the
// semantic source never saw fuses with similarity zero. Higher fused score
// wins; ties keep structured order.
func fuseCandidates(structured []core.Listing, semanticScores map[string]float64, semWeight, posWeight float64) []Candidate {
	total := len(structured)
	cands := make([]Candidate, 0, total)
	for i, l := range structured {
		rank := i + 1
		pos := positionScore(rank, total)
		sem := semanticScores[l.ID]
		cands = append(cands, Candidate{
			Listing:        l,
			Source:         SourceStructured,
			StructuredRank: rank,
			SemanticScore:  sem,
			PositionScore:  pos,
			FusedScore:     semWeight*sem + posWeight*pos,
		})
	}
	sortCandidates(cands)
	return cands
}

// sortCandidates orders by fused score descending. Ties break by ascending
// structured rank, then by listing ID so merged fan-out results stay
// deterministic across runs.
func sortCandidates(cands []Candidate) {
	slices.SortStableFunc(cands, func(a, b Candidate) int {
		if a.FusedScore != b.FusedScore {
			return cmp.Compare(b.FusedScore, a.FusedScore)
		}
		ar, br := a.StructuredRank, b.StructuredRank
		if ar > 0 && br > 0 && ar != br {
			return cmp.Compare(ar, br)
		}
		if ar != br {
			// Ranked candidates sort ahead of unranked ones.
			return cmp.Compare(br, ar)
		}
		return cmp.Compare(a.Listing.ID, b.Listing.ID)
	})
}

// structuredCandidates wraps a structured result set verbatim: store order
// preserved, fused score carrying only the position component.
func structuredCandidates(listings []core.Listing) []Candidate {
	total := len(listings)
	cands := make([]Candidate, 0, total)
	for i, l := range listings {
		rank := i + 1
		pos := positionScore(rank, total)
		cands = append(cands, Candidate{
			Listing:        l,
			Source:         SourceStructured,
			StructuredRank: rank,
			PositionScore:  pos,
			FusedScore:     pos,
		})
	}
	return cands
}

// semanticCandidates wraps semantic hits in index order, fused score equal
// to the similarity.
func semanticCandidates(hits []SemanticHit) []Candidate {
	cands := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		cands = append(cands, Candidate{
			Listing:       h.Listing,
			Source:        SourceSemantic,
			SemanticScore: h.Score,
			FusedScore:    h.Score,
		})
	}
	return cands
}
