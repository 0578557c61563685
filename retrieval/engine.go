// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/domicil/core"
)

// StructuredSource answers a constraint set from the exact-filter record
// store. Returns matches in store order plus the pre-limit total.
type StructuredSource interface {
	Search(ctx context.Context, cs *core.ConstraintSet, limit int) ([]core.Listing, int, error)
}

// SemanticSource answers a constraint set by embedding similarity, hits
// ordered by similarity descending.
type SemanticSource interface {
	Search(ctx context.Context, cs *core.ConstraintSet, topK int) ([]SemanticHit, error)
}

// IndexAgeProbe reports the age of the vector index, or false when unknown.
type IndexAgeProbe func(ctx context.Context) (time.Duration, bool)

// Engine orchestrates retrieval across a structured and a semantic source.
// It is safe for concurrent use.
type Engine struct {
	structured StructuredSource
	semantic   SemanticSource
	cfg        *Config
	logger     *slog.Logger
	monitor    RetrievalMonitor
	indexAge   IndexAgeProbe
	pool       *ants.Pool
}

// Option modifies an Engine during construction.
type Option func(*Engine) error

// WithConfig sets the engine configuration. The config is validated.
func WithConfig(cfg *Config) Option {
	return func(e *Engine) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.cfg = cfg
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithMonitor sets the retrieval monitor.
func WithMonitor(m RetrievalMonitor) Option {
	return func(e *Engine) error {
		e.monitor = m
		return nil
	}
}

// WithIndexAgeProbe wires a probe used to annotate diagnostics with the
// vector index age.
func WithIndexAgeProbe(probe IndexAgeProbe) Option {
	return func(e *Engine) error {
		e.indexAge = probe
		return nil
	}
}

// NewEngine creates a retrieval engine over the given sources.
func NewEngine(structured StructuredSource, semantic SemanticSource, opts ...Option) (*Engine, error) {
	if structured == nil || semantic == nil {
		return nil, fmt.Errorf("%w: both sources are required", ErrInvalidConfig)
	}

	e := &Engine{
		structured: structured,
		semantic:   semantic,
		cfg:        DefaultConfig(),
		logger:     slog.Default().With("component", "retrieval-engine"),
		monitor:    NewNoopMonitor(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(e.cfg.FanoutWorkers)
	if err != nil {
		return nil, fmt.Errorf("create fan-out pool: %w", err)
	}
	e.pool = pool
	return e, nil
}

// Close releases the engine's worker pool.
func (e *Engine) Close() error {
	e.pool.Release()
	return nil
}

// Retrieve answers a constraint set with the given strategy. A maxResults
// of zero or less uses the configured default.
//
// An empty candidate list with a nil error is a valid answer: the sources
// were healthy and nothing matched. Source failures surface as
// ErrSourceUnavailable for single-source strategies and as
// ErrAllSourcesUnavailable when a hybrid retrieval loses both sources.
func (e *Engine) Retrieve(ctx context.Context, cs *core.ConstraintSet, strategy Strategy, maxResults int) (*Result, error) {
	if err := core.ValidateConstraintSet(cs); err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = e.cfg.MaxResults
	}

	start := time.Now()
	e.monitor.Start(cs, strategy)

	var res *Result
	var err error
	switch strategy {
	case StrategyStructured:
		res, err = e.retrieveStructured(ctx, cs, maxResults)
	case StrategySemantic:
		res, err = e.retrieveSemantic(ctx, cs, maxResults)
	case StrategyHybrid:
		res, err = e.retrieveHybrid(ctx, cs, maxResults)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownStrategy, int(strategy))
	}
	if err != nil {
		e.logger.Warn("retrieval failed", "strategy", strategy.String(), "error", err)
		e.monitor.Finish(nil, err)
		return nil, err
	}

	res.Evaluation = Evaluate(cs, res.Listings(), e.cfg.PassRatioThreshold)
	res.Diagnostics.Elapsed = time.Since(start)
	res.Diagnostics.IndexAge = -1
	if e.indexAge != nil {
		if age, ok := e.indexAge(ctx); ok {
			res.Diagnostics.IndexAge = age
		}
	}

	e.logger.Debug("retrieval done",
		"strategy", strategy.String(),
		"path", res.Diagnostics.Path,
		"candidates", len(res.Candidates),
		"pass_ratio", res.Evaluation.PassRatio,
		"elapsed", res.Diagnostics.Elapsed)
	e.monitor.Finish(res, nil)
	return res, nil
}

func (e *Engine) retrieveStructured(ctx context.Context, cs *core.ConstraintSet, maxResults int) (*Result, error) {
	sctx, cancel := context.WithTimeout(ctx, e.cfg.StructuredTimeout)
	defer cancel()

	listings, total, err := e.structured.Search(sctx, cs, maxResults)
	e.monitor.StructuredDone(listings, total, err)
	if err != nil {
		return nil, err
	}

	path := PathStructuredOnly
	if len(listings) == 0 {
		path = PathCorrectEmpty
	}
	return &Result{
		Candidates: structuredCandidates(listings),
		Diagnostics: Diagnostics{
			Path:            path,
			StructuredTotal: total,
		},
	}, nil
}

func (e *Engine) retrieveSemantic(ctx context.Context, cs *core.ConstraintSet, maxResults int) (*Result, error) {
	sctx, cancel := context.WithTimeout(ctx, e.cfg.SemanticTimeout)
	defer cancel()

	hits, err := e.semantic.Search(sctx, cs, overfetch(maxResults))
	e.monitor.SemanticDone(hits, err)
	if err != nil {
		return nil, err
	}

	total := len(hits)
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	path := PathSemanticOnly
	if len(hits) == 0 {
		path = PathCorrectEmpty
	}
	return &Result{
		Candidates: semanticCandidates(hits),
		Diagnostics: Diagnostics{
			Path:         path,
			SemanticHits: total,
		},
	}, nil
}

// retrieveHybrid runs both sources concurrently under their own timeouts.
// The semantic call is issued optimistically: its scores re-rank whatever
// the structured store returns, and stand in as the full answer when the
// structured set is empty or its source is down.
func (e *Engine) retrieveHybrid(ctx context.Context, cs *core.ConstraintSet, maxResults int) (*Result, error) {
	var (
		wg       sync.WaitGroup
		listings []core.Listing
		total    int
		sErr     error
		hits     []SemanticHit
		mErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sctx, cancel := context.WithTimeout(ctx, e.cfg.StructuredTimeout)
		defer cancel()
		listings, total, sErr = e.structured.Search(sctx, cs, overfetch(maxResults))
		e.monitor.StructuredDone(listings, total, sErr)
	}()
	go func() {
		defer wg.Done()
		sctx, cancel := context.WithTimeout(ctx, e.cfg.SemanticTimeout)
		defer cancel()
		hits, mErr = e.semantic.Search(sctx, cs, overfetch(maxResults))
		e.monitor.SemanticDone(hits, mErr)
	}()
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if sErr != nil && mErr != nil {
		return nil, fmt.Errorf("%w: structured: %v; semantic: %v", ErrAllSourcesUnavailable, sErr, mErr)
	}

	diag := Diagnostics{
		StructuredTotal: total,
		SemanticHits:    len(hits),
	}
	if sErr != nil {
		diag.SourceErrors = append(diag.SourceErrors, sErr.Error())
	}
	if mErr != nil {
		diag.SourceErrors = append(diag.SourceErrors, mErr.Error())
	}

	// Structured answered with matches: fuse. A failed semantic source
	// degrades to fusing with similarity zero everywhere, which reduces
	// to structured order.
	if sErr == nil && len(listings) > 0 {
		scores := make(map[string]float64, len(hits))
		if mErr == nil {
			for _, h := range hits {
				scores[h.Listing.ID] = h.Score
			}
		}
		cands := fuseCandidates(listings, scores, e.cfg.SemanticWeight, e.cfg.PositionWeight)
		e.monitor.FusionDone(cands)
		if len(cands) > maxResults {
			cands = cands[:maxResults]
		}
		diag.Path = PathHybridFused
		return &Result{Candidates: cands, Diagnostics: diag}, nil
	}

	// Structured found nothing (or is down): serve semantic hits alone.
	if mErr == nil && len(hits) > 0 {
		e.monitor.FallbackTriggered()
		if len(hits) > maxResults {
			hits = hits[:maxResults]
		}
		diag.Path = PathHybridFallback
		return &Result{Candidates: semanticCandidates(hits), Diagnostics: diag}, nil
	}

	// Nothing to serve. Only a fully healthy empty answer counts as
	// correct-empty; a degraded one keeps the fallback path so callers
	// can tell the difference.
	diag.Path = PathCorrectEmpty
	if len(diag.SourceErrors) > 0 {
		e.monitor.FallbackTriggered()
		diag.Path = PathHybridFallback
	}
	return &Result{Diagnostics: diag}, nil
}

// overfetch widens a source request beyond the result cap so fusion and
// post-filters have slack to work with.
func overfetch(maxResults int) int {
	return maxResults * 2
}
