package retrieval

import (
	"context"
	"errors"
	"sync"

	"github.com/poiesic/domicil/core"
)

// RetrieveNearby answers one constraint set at several geographic points,
// one sub-query per point, and merges the results into a single ranking.
//
// The use case is "near any of my saved places": each point becomes a
// radius-constrained variant of the base set, the variants run concurrently
// on the engine's worker pool, and a listing reachable from several points
// keeps its best score. The merged evaluation scores listings against the
// base set, radius excluded, since no single radius applies to the union.
//
// Points without an explicit radius in the constraint set use the
// configured default. One failing sub-query degrades the answer; only all
// of them failing is an error.
func (e *Engine) RetrieveNearby(ctx context.Context, cs *core.ConstraintSet, points []core.Coordinates, strategy Strategy, maxResults int) (*Result, error) {
	if len(points) == 0 {
		return e.Retrieve(ctx, cs, strategy, maxResults)
	}
	if err := core.ValidateConstraintSet(cs); err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = e.cfg.MaxResults
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []*Result
		errs    []error
	)

	for i := range points {
		sub := *cs
		sub.Coordinates = &points[i]
		if sub.RadiusKm == nil {
			radius := e.cfg.RadiusKm
			sub.RadiusKm = &radius
		}

		wg.Add(1)
		task := func() {
			defer wg.Done()
			res, err := e.Retrieve(ctx, &sub, strategy, maxResults)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			results = append(results, res)
		}
		if err := e.pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}
	wg.Wait()

	if len(results) == 0 {
		return nil, errors.Join(errs...)
	}

	merged := mergeNearbyResults(results, maxResults)
	merged.Diagnostics.FanoutQueries = len(points)
	for _, err := range errs {
		merged.Diagnostics.SourceErrors = append(merged.Diagnostics.SourceErrors, err.Error())
	}

	base := *cs
	base.Coordinates = nil
	base.RadiusKm = nil
	merged.Evaluation = Evaluate(&base, merged.Listings(), e.cfg.PassRatioThreshold)
	return merged, nil
}

// mergeNearbyResults deduplicates candidates by listing ID, keeping the
// best fused score per listing, and re-ranks the union.
func mergeNearbyResults(results []*Result, maxResults int) *Result {
	best := make(map[string]Candidate)
	merged := &Result{Diagnostics: Diagnostics{IndexAge: -1}}

	for _, res := range results {
		merged.Diagnostics.SourceErrors = append(merged.Diagnostics.SourceErrors, res.Diagnostics.SourceErrors...)
		merged.Diagnostics.StructuredTotal += res.Diagnostics.StructuredTotal
		merged.Diagnostics.SemanticHits += res.Diagnostics.SemanticHits
		if res.Diagnostics.IndexAge > merged.Diagnostics.IndexAge {
			merged.Diagnostics.IndexAge = res.Diagnostics.IndexAge
		}
		merged.Diagnostics.Path = strongerPath(merged.Diagnostics.Path, res.Diagnostics.Path)
		for _, c := range res.Candidates {
			if prev, ok := best[c.Listing.ID]; !ok || c.FusedScore > prev.FusedScore {
				best[c.Listing.ID] = c
			}
		}
	}

	cands := make([]Candidate, 0, len(best))
	for _, c := range best {
		cands = append(cands, c)
	}
	sortCandidates(cands)
	if len(cands) > maxResults {
		cands = cands[:maxResults]
	}
	merged.Candidates = cands
	return merged
}

// strongerPath keeps the most informative path across merged sub-results.
func strongerPath(a, b string) string {
	rank := func(p string) int {
		switch p {
		case PathHybridFused:
			return 5
		case PathHybridFallback:
			return 4
		case PathStructuredOnly:
			return 3
		case PathSemanticOnly:
			return 2
		case PathCorrectEmpty:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
