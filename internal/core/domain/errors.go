package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// The cache store returns it for any missing or corrupt record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no loader is registered for a
	// document's file extension. Surfaced to the caller immediately,
	// distinct from a download or parse failure.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrEmptyDocument indicates the loader or chunker produced zero
	// usable chunks. Fatal for that document.
	ErrEmptyDocument = errors.New("document contains no indexable text")

	// ErrResourceExhausted indicates an accelerator ran out of memory
	// during embedding or reranking. Recoverable: per-query reranking
	// falls back to distance-based ranking.
	ErrResourceExhausted = errors.New("model resource exhausted")

	// ErrDimensionMismatch indicates a vector's dimension does not match
	// the index or embedding model. A configuration error, not recoverable
	// at runtime.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Documents cannot be indexed without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
