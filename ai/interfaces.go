package ai

import (
	"context"

	"github.com/poiesic/domicil/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ConstraintParser turns a free-form property search query into a normalized
// ConstraintSet. It is the boundary to the LLM extraction service; the
// retrieval engine itself never sees raw query text.
// Implementations must be thread-safe for concurrent use.
type ConstraintParser interface {
	// ParseConstraints extracts structured search constraints from the query
	// text. Query content not captured by a structured field lands in the
	// FreeText residual. The returned set is validated; malformed model
	// output surfaces as an error rather than a silently corrected set.
	ParseConstraints(ctx context.Context, query string) (*core.ConstraintSet, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// ConstraintParser instances, ensuring they share configuration.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ConstraintParser returns the constraint extraction service.
	// The returned ConstraintParser is safe for concurrent use.
	ConstraintParser() ConstraintParser

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
