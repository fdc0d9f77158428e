package driven

import (
	"io"

	"github.com/arcline-labs/askdoc/internal/core/domain"
)

// IndexBuilder constructs an immutable nearest-neighbour index from an
// embedding matrix (one row per chunk). A changed document triggers a
// full rebuild; there is no incremental insertion.
type IndexBuilder interface {
	// Build creates an index over the given rows. All rows must share
	// one dimension; a ragged matrix is domain.ErrDimensionMismatch.
	Build(embeddings [][]float32) (domain.VectorSearcher, error)
}

// SerializableIndex is a vector index that can round-trip through
// durable storage with byte-stable search results.
type SerializableIndex interface {
	domain.VectorSearcher
	io.WriterTo
}
