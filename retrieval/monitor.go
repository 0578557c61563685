package retrieval

import "github.com/poiesic/domicil/core"

// RetrievalMonitor observes the phases of a retrieval. Implementations must
// be cheap and non-blocking; the engine calls them inline. StructuredDone
// and SemanticDone can arrive concurrently during a hybrid retrieval.
type RetrievalMonitor interface {
	// Start is called once per retrieval, before any source runs.
	Start(cs *core.ConstraintSet, strategy Strategy)

	// StructuredDone is called after the structured source returns.
	StructuredDone(listings []core.Listing, total int, err error)

	// SemanticDone is called after the semantic source returns.
	SemanticDone(hits []SemanticHit, err error)

	// FallbackTriggered is called when a hybrid retrieval abandons the
	// structured result set and serves semantic hits instead.
	FallbackTriggered()

	// FusionDone is called with the fused ranking, before the result cap.
	FusionDone(candidates []Candidate)

	// Finish is called once per retrieval with the final result or error.
	Finish(result *Result, err error)
}

type noopMonitor struct{}

// NewNoopMonitor returns a monitor that does nothing. It is the default
// when no monitor is configured.
func NewNoopMonitor() RetrievalMonitor {
	return noopMonitor{}
}

func (noopMonitor) Start(*core.ConstraintSet, Strategy)        {}
func (noopMonitor) StructuredDone([]core.Listing, int, error)  {}
func (noopMonitor) SemanticDone([]SemanticHit, error)          {}
func (noopMonitor) FallbackTriggered()                         {}
func (noopMonitor) FusionDone([]Candidate)                     {}
func (noopMonitor) Finish(*Result, error)                      {}
