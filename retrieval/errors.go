package retrieval

import "errors"

var (
	// ErrSourceUnavailable indicates a retrieval source failed or timed out.
	// A timeout is indistinguishable from an outage to the caller, so both
	// classify the same way.
	ErrSourceUnavailable = errors.New("retrieval source unavailable")

	// ErrAllSourcesUnavailable indicates every source a hybrid retrieval
	// depends on failed. Only then does hybrid surface a hard error.
	ErrAllSourcesUnavailable = errors.New("all retrieval sources unavailable")

	// ErrUnknownStrategy indicates a strategy value outside the known set.
	ErrUnknownStrategy = errors.New("unknown retrieval strategy")

	// ErrInvalidConfig indicates an engine configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid retrieval config")

	// ErrInvalidFusionWeights indicates fusion weights that do not sum to 1.0.
	ErrInvalidFusionWeights = errors.New("fusion weights must sum to 1.0")
)
