package ai

import (
	"context"
	"time"

	"github.com/poiesic/notefind/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector is L2-normalized and has core.EmbeddingDims
	// dimensions.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryClassifier turns a free-form query into a structured retrieval intent.
// Implementations must be thread-safe for concurrent use.
type QueryClassifier interface {
	// ClassifyQuery analyzes a natural-language query and determines how it
	// should be answered: with exact filters, with similarity search, or both.
	// The now timestamp anchors relative date expressions ("in the last 5
	// days") so filter values come out as absolute ISO-8601 literals.
	//
	// The returned intent is untrusted: its predicates must still be compiled
	// against the field whitelist before reaching storage.
	// Returns an error if classification fails; callers are expected to fall
	// back to core.DefaultIntent.
	ClassifyQuery(ctx context.Context, query string, now time.Time) (*core.QueryIntent, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and QueryClassifier instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// QueryClassifier returns the query classification service.
	// The returned QueryClassifier is safe for concurrent use.
	QueryClassifier() QueryClassifier

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
