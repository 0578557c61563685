package retrieval

import (
	"strings"

	"github.com/poiesic/domicil/core"
)

// ListingScore is the constraint satisfaction of one returned listing.
type ListingScore struct {
	// Applicable is the number of constraints that could be checked
	// against this listing.
	Applicable int

	// Satisfied is how many of them the listing meets.
	Satisfied int

	// PassRatio is Satisfied / Applicable.
	PassRatio float64

	// Strict reports whether every applicable constraint is satisfied.
	Strict bool
}

// Evaluation scores a result set against the constraint set it was
// retrieved for. Retrieval quality is a property of the answer, not of the
// engine run, so the evaluation travels with the result.
type Evaluation struct {
	// Scores holds the per-listing breakdown, keyed by listing ID.
	// Listings with no applicable constraint are absent.
	Scores map[string]ListingScore

	// PassRatio is the fraction of scored listings that strictly satisfy
	// every applicable constraint. Zero when nothing was scorable.
	PassRatio float64

	// QuerySucceeded reports whether PassRatio reached the configured
	// threshold.
	QuerySucceeded bool

	// HasUnscorableConstraint flags a free-text residual: the constraint
	// applied to retrieval but cannot be checked mechanically, so the
	// ratios above understate what the query asked for.
	HasUnscorableConstraint bool
}

// Evaluate scores listings against a constraint set.
//
// Each set scalar counts as one constraint: a price range with both bounds
// is two constraints, not one. A listing with zero applicable constraints
// is excluded from the aggregate rather than counted as a free pass.
func Evaluate(cs *core.ConstraintSet, listings []core.Listing, passThreshold float64) Evaluation {
	eval := Evaluation{
		Scores:                  make(map[string]ListingScore, len(listings)),
		HasUnscorableConstraint: cs != nil && cs.FreeText != "",
	}
	if cs == nil {
		return eval
	}

	strictCount := 0
	for i := range listings {
		applicable, satisfied := scoreListing(cs, &listings[i])
		if applicable == 0 {
			continue
		}
		score := ListingScore{
			Applicable: applicable,
			Satisfied:  satisfied,
			PassRatio:  float64(satisfied) / float64(applicable),
			Strict:     satisfied == applicable,
		}
		eval.Scores[listings[i].ID] = score
		if score.Strict {
			strictCount++
		}
	}

	if len(eval.Scores) > 0 {
		eval.PassRatio = float64(strictCount) / float64(len(eval.Scores))
		eval.QuerySucceeded = eval.PassRatio >= passThreshold
	}
	return eval
}

func scoreListing(cs *core.ConstraintSet, l *core.Listing) (applicable, satisfied int) {
	check := func(ok bool) {
		applicable++
		if ok {
			satisfied++
		}
	}

	if cs.LocationKeyword != "" {
		check(matchesKeyword(l, cs.LocationKeyword))
	}
	if cs.PriceMin != nil {
		check(l.Price >= *cs.PriceMin)
	}
	if cs.PriceMax != nil {
		check(l.Price <= *cs.PriceMax)
	}
	if cs.BedroomsMin != nil {
		check(l.Bedrooms >= *cs.BedroomsMin)
	}
	if cs.BedroomsMax != nil {
		check(l.Bedrooms <= *cs.BedroomsMax)
	}
	if cs.FloorsMin != nil {
		check(l.Floors >= *cs.FloorsMin)
	}
	if cs.FloorsMax != nil {
		check(l.Floors <= *cs.FloorsMax)
	}
	if cs.PropertyType != "" {
		check(strings.EqualFold(l.PropertyType, cs.PropertyType))
	}
	if cs.ListingType != "" {
		check(strings.EqualFold(l.ListingType, cs.ListingType))
	}
	if cs.Coordinates != nil && cs.RadiusKm != nil {
		at := core.Coordinates{Lat: l.Location.Lat, Lng: l.Location.Lng}
		check(cs.Coordinates.DistanceKm(at) <= *cs.RadiusKm)
	}
	return applicable, satisfied
}

// matchesKeyword checks the location keyword against the same fields the
// structured store searches, so evaluation never penalizes a structured
// match for the store's own matching rules.
func matchesKeyword(l *core.Listing, keyword string) bool {
	kw := strings.ToLower(keyword)
	for _, field := range []string{l.Location.Address, l.Location.District, l.Location.City, l.Title} {
		if strings.Contains(strings.ToLower(field), kw) {
			return true
		}
	}
	return false
}
