package driven

import (
	"context"
	"time"

	"github.com/arcline-labs/askdoc/internal/core/domain"
)

// CacheEntry is the durable record for one (document, embedding model)
// pair: chunks, embedding matrix and the built index, plus provenance.
// Written once, never partially updated.
type CacheEntry struct {
	// Identity is the document identity the entry is keyed by.
	Identity domain.Identity

	// SourceURL is the original document URL.
	SourceURL string

	// Model is the embedding model the vectors were produced with.
	Model string

	// Chunks in document order.
	Chunks []domain.Chunk

	// Embeddings holds one row per chunk.
	Embeddings [][]float32

	// Index is the built vector index. Must implement SerializableIndex
	// for Save to succeed.
	Index domain.VectorSearcher

	// CreatedAt is when the record was written.
	CreatedAt time.Time
}

// CacheStore persists document indexes across process restarts, keyed by
// (identity, embedding model) so caches for different models never
// cross-contaminate.
type CacheStore interface {
	// Save writes a full record. Callers treat a save failure as
	// log-and-continue: caching is best-effort and never fails a
	// request.
	Save(ctx context.Context, entry CacheEntry) error

	// Load returns the full record for an identity, or
	// domain.ErrNotFound if any artifact is missing or fails to
	// deserialize. Partial records are never returned.
	Load(ctx context.Context, id domain.Identity) (*CacheEntry, error)
}
