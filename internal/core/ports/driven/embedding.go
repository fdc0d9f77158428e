package driven

import "context"

// EmbeddingService maps text to fixed-dimension dense vectors.
//
// The service is process-wide shared state, initialised once at startup;
// concurrent calls must be safe. Model loading and warmup are the
// adapter's concern.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// EmbedBatch embeds texts in internal batches of at most batchSize,
	// returning one vector per input in input order. batchSize is a
	// throughput/memory knob, never a correctness one; values < 1 fall
	// back to an implementation default.
	EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error)

	// Dimensions returns the embedding vector size. Fixed per model and
	// must match the dimension of any index or cache being reused; a
	// mismatch is a fatal configuration error.
	Dimensions() int

	// ModelName returns the name of the embedding model. Cache records
	// are keyed by it so that switching models never serves stale
	// vectors.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
