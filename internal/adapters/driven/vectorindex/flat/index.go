// Package flat provides a brute-force L2 vector index. Exact search by
// full scan: no approximation, deterministic ordering, and a byte-stable
// serialisation round trip. At the scale of a single document's chunks a
// full scan beats graph indexes on both simplicity and build time.
package flat

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// Ensure the interfaces are implemented.
var (
	_ domain.VectorSearcher    = (*Index)(nil)
	_ driven.SerializableIndex = (*Index)(nil)
	_ driven.IndexBuilder      = (*Builder)(nil)
)

// Serialisation header.
const (
	magic   = uint32(0x41444649) // "ADFI"
	version = uint32(1)
)

// Index is an immutable flat L2 index. Vectors are stored row-major in a
// single contiguous slice; row i corresponds to chunk i. Safe for
// concurrent Search calls because nothing mutates after construction.
type Index struct {
	dim  int
	rows int
	data []float32
}

// Builder constructs flat indexes. It implements driven.IndexBuilder.
type Builder struct{}

// NewBuilder returns a builder for flat indexes.
func NewBuilder() *Builder { return &Builder{} }

// Build creates an index over the embedding matrix. All rows must share
// one dimension.
func (Builder) Build(embeddings [][]float32) (domain.VectorSearcher, error) {
	return New(embeddings)
}

// New creates an index over the embedding matrix.
func New(embeddings [][]float32) (*Index, error) {
	if len(embeddings) == 0 {
		return &Index{}, nil
	}

	dim := len(embeddings[0])
	if dim == 0 {
		return nil, fmt.Errorf("flat: zero-dimension embeddings: %w", domain.ErrDimensionMismatch)
	}

	data := make([]float32, 0, len(embeddings)*dim)
	for i, row := range embeddings {
		if len(row) != dim {
			return nil, fmt.Errorf("flat: row %d has dimension %d, want %d: %w",
				i, len(row), dim, domain.ErrDimensionMismatch)
		}
		data = append(data, row...)
	}

	return &Index{dim: dim, rows: len(embeddings), data: data}, nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int { return x.rows }

// Dimensions returns the vector dimension the index was built with.
func (x *Index) Dimensions() int { return x.dim }

// Search returns the k nearest rows to query by squared L2 distance,
// ascending, ties broken by insertion order. k is clamped to Len().
func (x *Index) Search(query []float32, k int) ([]float32, []int, error) {
	if x.rows == 0 || k <= 0 {
		return nil, nil, nil
	}
	if len(query) != x.dim {
		return nil, nil, fmt.Errorf("flat: query has dimension %d, want %d: %w",
			len(query), x.dim, domain.ErrDimensionMismatch)
	}
	if k > x.rows {
		k = x.rows
	}

	dists := make([]float32, x.rows)
	for i := 0; i < x.rows; i++ {
		row := x.data[i*x.dim : (i+1)*x.dim]
		var sum float32
		for j, q := range query {
			d := row[j] - q
			sum += d * d
		}
		dists[i] = sum
	}

	ids := make([]int, x.rows)
	for i := range ids {
		ids[i] = i
	}
	sort.Slice(ids, func(a, b int) bool {
		if dists[ids[a]] != dists[ids[b]] {
			return dists[ids[a]] < dists[ids[b]]
		}
		return ids[a] < ids[b]
	})

	outDists := make([]float32, k)
	outIDs := make([]int, k)
	for i := 0; i < k; i++ {
		outIDs[i] = ids[i]
		outDists[i] = dists[ids[i]]
	}
	return outDists, outIDs, nil
}

// WriteTo serialises the index. The encoding is fixed little-endian so a
// reloaded index returns bit-identical distances.
func (x *Index) WriteTo(w io.Writer) (int64, error) {
	header := []uint32{magic, version, uint32(x.dim), uint32(x.rows)}
	var written int64

	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return written, fmt.Errorf("flat: write header: %w", err)
		}
		written += 4
	}

	buf := make([]byte, 4)
	for _, f := range x.data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
		n, err := w.Write(buf)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("flat: write data: %w", err)
		}
	}
	return written, nil
}

// Read deserialises an index previously written with WriteTo.
func Read(r io.Reader) (*Index, error) {
	var header [4]uint32
	for i := range header {
		if err := binary.Read(r, binary.LittleEndian, &header[i]); err != nil {
			return nil, fmt.Errorf("flat: read header: %w", err)
		}
	}
	if header[0] != magic {
		return nil, fmt.Errorf("flat: bad magic %#x", header[0])
	}
	if header[1] != version {
		return nil, fmt.Errorf("flat: unsupported version %d", header[1])
	}

	dim := int(header[2])
	rows := int(header[3])
	if dim < 0 || rows < 0 {
		return nil, fmt.Errorf("flat: corrupt header (dim=%d rows=%d)", dim, rows)
	}

	data := make([]float32, dim*rows)
	buf := make([]byte, 4)
	for i := range data {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("flat: read data: %w", err)
		}
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf))
	}

	return &Index{dim: dim, rows: rows, data: data}, nil
}
