package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/domicil/core"
)

func int64Ptr(v int64) *int64       { return &v }
func intPtr(v int) *int             { return &v }
func float64Ptr(v float64) *float64 { return &v }

func TestEvaluatePartialSatisfaction(t *testing.T) {
	cs := &core.ConstraintSet{
		LocationKeyword: "cemara",
		PropertyType:    core.PropertyHouse,
		PriceMax:        int64Ptr(500_000_000),
		BedroomsMin:     intPtr(2),
	}

	// Right keyword, type and bedrooms, but over budget: 3 of 4.
	listing := core.Listing{
		ID:           "l-1",
		Title:        "Rumah Cemara Asri",
		Price:        850_000_000,
		PropertyType: core.PropertyHouse,
		Bedrooms:     3,
	}

	eval := Evaluate(cs, []core.Listing{listing}, DefaultPassRatioThreshold)

	score, ok := eval.Scores["l-1"]
	require.True(t, ok)
	assert.Equal(t, 4, score.Applicable)
	assert.Equal(t, 3, score.Satisfied)
	assert.InDelta(t, 0.75, score.PassRatio, 1e-9)
	assert.False(t, score.Strict)
	assert.False(t, eval.QuerySucceeded)
}

func TestEvaluateQuerySuccess(t *testing.T) {
	cs := &core.ConstraintSet{
		LocationKeyword: "cemara",
		PropertyType:    core.PropertyHouse,
		PriceMax:        int64Ptr(900_000_000),
	}

	listings := []core.Listing{
		{
			ID: "l-1", Title: "Rumah Cemara Asri", Price: 850_000_000,
			PropertyType: core.PropertyHouse,
			Location:     core.Location{District: "Cemara Asri", City: "Medan"},
		},
		{
			ID: "l-2", Title: "Rumah Minimalis Cemara Hijau", Price: 450_000_000,
			PropertyType: core.PropertyHouse,
			Location:     core.Location{District: "Cemara Hijau", City: "Medan"},
		},
		{
			ID: "l-3", Title: "Ruko Strategis Cemara", Price: 2_100_000_000,
			PropertyType: core.PropertyShop,
			Location:     core.Location{District: "Cemara", City: "Medan"},
		},
	}

	eval := Evaluate(cs, listings, DefaultPassRatioThreshold)

	assert.True(t, eval.Scores["l-1"].Strict)
	assert.True(t, eval.Scores["l-2"].Strict)
	assert.False(t, eval.Scores["l-3"].Strict)
	assert.InDelta(t, 2.0/3.0, eval.PassRatio, 1e-9)
	assert.True(t, eval.QuerySucceeded, "2 of 3 strict is above the 0.60 threshold")
}

func TestEvaluateFreeTextIsUnscorable(t *testing.T) {
	cs := &core.ConstraintSet{FreeText: "dekat sekolah internasional"}
	listings := []core.Listing{{ID: "l-1", Title: "Rumah"}}

	eval := Evaluate(cs, listings, DefaultPassRatioThreshold)

	assert.True(t, eval.HasUnscorableConstraint)
	assert.Empty(t, eval.Scores, "free text alone leaves nothing to check")
	assert.Zero(t, eval.PassRatio)
	assert.False(t, eval.QuerySucceeded)
}

func TestEvaluateEmptyListings(t *testing.T) {
	cs := &core.ConstraintSet{PropertyType: core.PropertyHouse}

	eval := Evaluate(cs, nil, DefaultPassRatioThreshold)

	assert.Empty(t, eval.Scores)
	assert.Zero(t, eval.PassRatio)
	assert.False(t, eval.QuerySucceeded)
}

func TestEvaluateRadiusConstraint(t *testing.T) {
	center := core.Coordinates{Lat: 3.5800, Lng: 98.6800}
	cs := &core.ConstraintSet{
		Coordinates: &center,
		RadiusKm:    float64Ptr(2.0),
	}

	listings := []core.Listing{
		{ID: "near", Title: "Near", Location: core.Location{Lat: 3.5810, Lng: 98.6810}},
		{ID: "far", Title: "Far", Location: core.Location{Lat: 3.7000, Lng: 98.9000}},
	}

	eval := Evaluate(cs, listings, DefaultPassRatioThreshold)

	assert.True(t, eval.Scores["near"].Strict)
	assert.False(t, eval.Scores["far"].Strict)
	assert.InDelta(t, 0.5, eval.PassRatio, 1e-9)
}

func TestEvaluateRangeBoundsAreInclusive(t *testing.T) {
	cs := &core.ConstraintSet{
		PriceMin:    int64Ptr(400_000_000),
		PriceMax:    int64Ptr(850_000_000),
		BedroomsMin: intPtr(3),
		BedroomsMax: intPtr(3),
	}

	listing := core.Listing{ID: "l-1", Title: "Rumah", Price: 850_000_000, Bedrooms: 3}

	eval := Evaluate(cs, []core.Listing{listing}, DefaultPassRatioThreshold)
	assert.True(t, eval.Scores["l-1"].Strict)
}

func TestEvaluateNilConstraintSet(t *testing.T) {
	eval := Evaluate(nil, []core.Listing{{ID: "l-1"}}, DefaultPassRatioThreshold)

	assert.Empty(t, eval.Scores)
	assert.False(t, eval.QuerySucceeded)
	assert.False(t, eval.HasUnscorableConstraint)
}
