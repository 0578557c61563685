package retrieval

import (
	"fmt"
	"math"
	"time"
)

// Default tuning values. They encode the operating assumptions the engine
// was calibrated against: a catalog of tens of thousands of listings served
// from local storage, with the embedding service as the slowest dependency.
const (
	DefaultSemanticWeight     = 0.6
	DefaultPositionWeight     = 0.4
	DefaultSimilarityFloor    = 0.35
	DefaultPassRatioThreshold = 0.60
	DefaultStructuredTimeout  = 3 * time.Second
	DefaultSemanticTimeout    = 5 * time.Second
	DefaultMaxResults         = 10
	DefaultRadiusKm           = 5.0
	DefaultFanoutWorkers      = 4
)

// weightTolerance absorbs float rounding when checking that the fusion
// weights sum to one.
const weightTolerance = 1e-9

// Config holds the tuning knobs of the retrieval engine.
type Config struct {
	// SemanticWeight scales the cosine similarity component of the fused
	// score. SemanticWeight + PositionWeight must equal 1.0.
	SemanticWeight float64

	// PositionWeight scales the structured-position component of the fused
	// score.
	PositionWeight float64

	// SimilarityFloor is the minimum cosine similarity a semantic hit needs
	// to be considered at all.
	SimilarityFloor float64

	// PassRatioThreshold is the fraction of returned listings that must
	// strictly satisfy every applicable constraint for the query to count
	// as succeeded.
	PassRatioThreshold float64

	// StructuredTimeout bounds one structured store call.
	StructuredTimeout time.Duration

	// SemanticTimeout bounds one semantic search call, embedding included.
	SemanticTimeout time.Duration

	// MaxResults is the result cap applied when the caller passes none.
	MaxResults int

	// RadiusKm is the search radius used by proximity fan-out when the
	// constraint set carries no radius of its own.
	RadiusKm float64

	// FanoutWorkers sizes the worker pool shared by proximity fan-out
	// queries.
	FanoutWorkers int
}

// ConfigOption modifies a Config during construction.
type ConfigOption func(*Config)

// WithFusionWeights sets the semantic and position fusion weights.
func WithFusionWeights(semantic, position float64) ConfigOption {
	return func(c *Config) {
		c.SemanticWeight = semantic
		c.PositionWeight = position
	}
}

// WithSimilarityFloor sets the minimum cosine similarity for semantic hits.
func WithSimilarityFloor(floor float64) ConfigOption {
	return func(c *Config) {
		c.SimilarityFloor = floor
	}
}

// WithPassRatioThreshold sets the query success threshold.
func WithPassRatioThreshold(threshold float64) ConfigOption {
	return func(c *Config) {
		c.PassRatioThreshold = threshold
	}
}

// WithTimeouts sets the per-source timeouts.
func WithTimeouts(structured, semantic time.Duration) ConfigOption {
	return func(c *Config) {
		c.StructuredTimeout = structured
		c.SemanticTimeout = semantic
	}
}

// WithMaxResults sets the default result cap.
func WithMaxResults(n int) ConfigOption {
	return func(c *Config) {
		c.MaxResults = n
	}
}

// WithFanoutWorkers sets the proximity fan-out pool size.
func WithFanoutWorkers(n int) ConfigOption {
	return func(c *Config) {
		c.FanoutWorkers = n
	}
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		SemanticWeight:     DefaultSemanticWeight,
		PositionWeight:     DefaultPositionWeight,
		SimilarityFloor:    DefaultSimilarityFloor,
		PassRatioThreshold: DefaultPassRatioThreshold,
		StructuredTimeout:  DefaultStructuredTimeout,
		SemanticTimeout:    DefaultSemanticTimeout,
		MaxResults:         DefaultMaxResults,
		RadiusKm:           DefaultRadiusKm,
		FanoutWorkers:      DefaultFanoutWorkers,
	}
}

// NewConfig creates a validated config from defaults plus options.
// Misconfigured weights are a deployment bug, so validation fails fast here
// rather than skewing every fused score at query time.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.SemanticWeight < 0 || c.SemanticWeight > 1 || c.PositionWeight < 0 || c.PositionWeight > 1 {
		return fmt.Errorf("%w: %w: weights must lie in [0, 1], got semantic=%v position=%v",
			ErrInvalidConfig, ErrInvalidFusionWeights, c.SemanticWeight, c.PositionWeight)
	}
	if math.Abs(c.SemanticWeight+c.PositionWeight-1.0) > weightTolerance {
		return fmt.Errorf("%w: %w: got semantic=%v position=%v",
			ErrInvalidConfig, ErrInvalidFusionWeights, c.SemanticWeight, c.PositionWeight)
	}
	if c.SimilarityFloor < 0 || c.SimilarityFloor >= 1 {
		return fmt.Errorf("%w: similarity floor must lie in [0, 1), got %v", ErrInvalidConfig, c.SimilarityFloor)
	}
	if c.PassRatioThreshold < 0 || c.PassRatioThreshold > 1 {
		return fmt.Errorf("%w: pass ratio threshold must lie in [0, 1], got %v", ErrInvalidConfig, c.PassRatioThreshold)
	}
	if c.StructuredTimeout <= 0 || c.SemanticTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("%w: max results must be positive, got %d", ErrInvalidConfig, c.MaxResults)
	}
	if c.RadiusKm <= 0 {
		return fmt.Errorf("%w: fan-out radius must be positive, got %v", ErrInvalidConfig, c.RadiusKm)
	}
	if c.FanoutWorkers <= 0 {
		return fmt.Errorf("%w: fan-out workers must be positive, got %d", ErrInvalidConfig, c.FanoutWorkers)
	}
	return nil
}
