package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestNewConfigAppliesOptions(t *testing.T) {
	cfg, err := NewConfig(
		WithFusionWeights(0.7, 0.3),
		WithSimilarityFloor(0.5),
		WithPassRatioThreshold(0.8),
		WithTimeouts(time.Second, 2*time.Second),
		WithMaxResults(25),
		WithFanoutWorkers(8),
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.7, cfg.SemanticWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.PositionWeight, 1e-9)
	assert.InDelta(t, 0.5, cfg.SimilarityFloor, 1e-9)
	assert.InDelta(t, 0.8, cfg.PassRatioThreshold, 1e-9)
	assert.Equal(t, time.Second, cfg.StructuredTimeout)
	assert.Equal(t, 2*time.Second, cfg.SemanticTimeout)
	assert.Equal(t, 25, cfg.MaxResults)
	assert.Equal(t, 8, cfg.FanoutWorkers)
}

func TestNewConfigRejectsBadWeights(t *testing.T) {
	t.Run("weights not summing to one", func(t *testing.T) {
		_, err := NewConfig(WithFusionWeights(0.6, 0.3))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFusionWeights)
	})

	t.Run("weight outside unit interval", func(t *testing.T) {
		_, err := NewConfig(WithFusionWeights(1.4, -0.4))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFusionWeights)
	})
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"similarity floor at one", func(c *Config) { c.SimilarityFloor = 1.0 }},
		{"negative similarity floor", func(c *Config) { c.SimilarityFloor = -0.1 }},
		{"pass threshold above one", func(c *Config) { c.PassRatioThreshold = 1.1 }},
		{"zero structured timeout", func(c *Config) { c.StructuredTimeout = 0 }},
		{"zero semantic timeout", func(c *Config) { c.SemanticTimeout = 0 }},
		{"zero max results", func(c *Config) { c.MaxResults = 0 }},
		{"zero radius", func(c *Config) { c.RadiusKm = 0 }},
		{"zero fan-out workers", func(c *Config) { c.FanoutWorkers = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	cases := []struct {
		input string
		want  Strategy
	}{
		{"hybrid", StrategyHybrid},
		{"Structured", StrategyStructured},
		{"SEMANTIC", StrategySemantic},
		{"  hybrid  ", StrategyHybrid},
		{"", StrategyHybrid},
	}
	for _, tc := range cases {
		got, err := ParseStrategy(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}

	_, err := ParseStrategy("fulltext")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "hybrid", StrategyHybrid.String())
	assert.Equal(t, "structured", StrategyStructured.String())
	assert.Equal(t, "semantic", StrategySemantic.String())
}
