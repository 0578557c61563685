package mock

import (
	"context"
	"strings"

	"github.com/poiesic/domicil/core"
)

// MockConstraintParser is a test double for ai.ConstraintParser.
// It allows custom behavior injection via function fields.
type MockConstraintParser struct {
	// ParseConstraintsFunc is called by ParseConstraints if set.
	// If nil, uses default keyword-spotting behavior.
	ParseConstraintsFunc func(ctx context.Context, query string) (*core.ConstraintSet, error)

	callCount int
}

// NewMockConstraintParser creates a mock parser with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockParser().
func NewMockConstraintParser() *MockConstraintParser {
	return &MockConstraintParser{}
}

// ParseConstraints extracts a simple mock constraint set from the query.
// Default behavior: spots property/listing type vocabulary and puts the
// whole query into the FreeText residual.
func (m *MockConstraintParser) ParseConstraints(ctx context.Context, query string) (*core.ConstraintSet, error) {
	m.callCount++

	if m.ParseConstraintsFunc != nil {
		return m.ParseConstraintsFunc(ctx, query)
	}

	cs := &core.ConstraintSet{FreeText: strings.TrimSpace(query)}
	lower := strings.ToLower(query)
	for _, pt := range core.PropertyTypes {
		if strings.Contains(lower, pt) {
			cs.PropertyType = pt
			break
		}
	}
	if strings.Contains(lower, "rent") {
		cs.ListingType = core.ListingRent
	}
	return cs, nil
}

// CallCount returns the number of times ParseConstraints was called.
func (m *MockConstraintParser) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockConstraintParser) Reset() {
	m.callCount = 0
	m.ParseConstraintsFunc = nil
}
