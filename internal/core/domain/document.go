package domain

import "strings"

// Section is one parsed unit of a source document as produced by a loader:
// a page of a PDF, a slide, a sheet row, or a whole plaintext file.
type Section struct {
	// Text is the raw extracted text.
	Text string

	// Metadata carries loader-specific provenance (source URL, page,
	// slide, row, ...). Inherited unchanged by every chunk cut from
	// this section.
	Metadata map[string]any
}

// Chunk is a bounded span of document text with provenance metadata,
// the atomic unit of retrieval. Immutable once created.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Metadata is inherited from the section the chunk was cut from.
	Metadata map[string]any
}

// VectorSearcher is the read side of a built vector index.
// Implementations must be safe for concurrent Search calls.
type VectorSearcher interface {
	// Search returns the k nearest indexed vectors to query by L2
	// distance, ascending. Ties are broken by insertion order. k is
	// clamped to the number of indexed vectors.
	Search(query []float32, k int) (distances []float32, ids []int, err error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimensions returns the vector dimension the index was built with.
	Dimensions() int
}

// DocumentIndex is the fully built, immutable retrieval state for one
// document. Row i of Embeddings always corresponds to Chunks[i] and to
// index id i; the structure is rebuilt wholesale, never patched.
type DocumentIndex struct {
	// Identity is the content-addressing key for the source document.
	Identity Identity

	// SourceURL is the URL the document was fetched from.
	SourceURL string

	// Chunks in document order.
	Chunks []Chunk

	// Embeddings holds one row per chunk, fixed dimension.
	Embeddings [][]float32

	// Index is the nearest-neighbour structure over Embeddings.
	Index VectorSearcher
}

// FullText returns the concatenated text of all chunks, used by the
// caller for the small-document bypass decision.
func (d *DocumentIndex) FullText() string {
	if d == nil || len(d.Chunks) == 0 {
		return ""
	}
	texts := make([]string, len(d.Chunks))
	for i, c := range d.Chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n")
}

// Empty reports whether the index holds no retrievable content.
func (d *DocumentIndex) Empty() bool {
	return d == nil || len(d.Chunks) == 0 || d.Index == nil || d.Index.Len() == 0
}
