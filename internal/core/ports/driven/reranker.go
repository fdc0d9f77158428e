package driven

import "context"

// Reranker scores retrieval candidates against a question with a
// cross-encoder-style model. More expensive and more accurate than the
// first-pass vector distance; applied to an over-fetched candidate pool.
//
// A resource-exhaustion failure (accelerator out of memory) must be
// reported as an error wrapping domain.ErrResourceExhausted so the
// orchestrator can fall back to distance-based ranking. Any other error
// propagates as a per-question failure.
type Reranker interface {
	// Rerank returns one relevance score per candidate, in candidate
	// order. Higher is more relevant.
	Rerank(ctx context.Context, query string, candidates []string) ([]float64, error)

	// Close releases resources.
	Close() error
}
