// Package file provides a durable document-index cache on local disk.
// One record is five artifact files keyed by (identity hash, embedding
// model slug); a record is present only if every artifact exists and
// parses, so a crash mid-write reads back as a miss, never as a partial
// record.
package file

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arcline-labs/askdoc/internal/adapters/driven/vectorindex/flat"
	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// artifact suffixes; together they form one record.
const (
	suffixChunks     = "chunks.json"
	suffixMetadata   = "metadata.json"
	suffixEmbeddings = "embeddings.bin"
	suffixIndex      = "index.bin"
	suffixInfo       = "info.json"
)

// CacheStore persists document indexes under a cache directory.
type CacheStore struct {
	dir   string
	model string
}

// info is the JSON sidecar recording provenance for a cache record.
type info struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	NumChunks int    `json:"num_chunks"`
	URLHash   string `json:"url_hash"`
	Model     string `json:"model"`
}

// New creates a cache store rooted at dir, keyed for the given embedding
// model. If dir is empty it defaults to ~/.askdoc/cache.
func New(dir, model string) (*CacheStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cache: resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".askdoc", "cache")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}
	return &CacheStore{dir: dir, model: model}, nil
}

// Save writes a full record. The info sidecar is written last so an
// interrupted save never reads back as a complete record.
func (s *CacheStore) Save(_ context.Context, entry driven.CacheEntry) error {
	ser, ok := entry.Index.(io.WriterTo)
	if !ok {
		return fmt.Errorf("cache: index type %T is not serialisable", entry.Index)
	}

	texts := make([]string, len(entry.Chunks))
	metas := make([]map[string]any, len(entry.Chunks))
	for i, c := range entry.Chunks {
		texts[i] = c.Text
		metas[i] = c.Metadata
	}

	if err := s.writeJSON(entry.Identity, suffixChunks, texts); err != nil {
		return err
	}
	if err := s.writeJSON(entry.Identity, suffixMetadata, metas); err != nil {
		return err
	}
	if err := s.writeEmbeddings(entry.Identity, entry.Embeddings); err != nil {
		return err
	}

	f, err := os.Create(s.path(entry.Identity, suffixIndex))
	if err != nil {
		return fmt.Errorf("cache: create index file: %w", err)
	}
	if _, err := ser.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("cache: write index: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cache: close index file: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return s.writeJSON(entry.Identity, suffixInfo, info{
		URL:       entry.SourceURL,
		Timestamp: createdAt.Format(time.RFC3339),
		NumChunks: len(entry.Chunks),
		URLHash:   entry.Identity.String(),
		Model:     s.model,
	})
}

// Load returns the full record for id, or domain.ErrNotFound when any
// artifact is missing, corrupt, or inconsistent.
func (s *CacheStore) Load(_ context.Context, id domain.Identity) (*driven.CacheEntry, error) {
	for _, suffix := range []string{suffixChunks, suffixMetadata, suffixEmbeddings, suffixIndex, suffixInfo} {
		if _, err := os.Stat(s.path(id, suffix)); err != nil {
			return nil, fmt.Errorf("cache: artifact %s: %w", suffix, domain.ErrNotFound)
		}
	}

	var texts []string
	if err := s.readJSON(id, suffixChunks, &texts); err != nil {
		return nil, err
	}
	var metas []map[string]any
	if err := s.readJSON(id, suffixMetadata, &metas); err != nil {
		return nil, err
	}
	var meta info
	if err := s.readJSON(id, suffixInfo, &meta); err != nil {
		return nil, err
	}

	embeddings, err := s.readEmbeddings(id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(id, suffixIndex))
	if err != nil {
		return nil, fmt.Errorf("cache: open index: %w", domain.ErrNotFound)
	}
	defer f.Close()
	idx, err := flat.Read(f)
	if err != nil {
		return nil, fmt.Errorf("cache: decode index (%v): %w", err, domain.ErrNotFound)
	}

	if len(texts) != len(metas) || len(texts) != len(embeddings) || len(texts) != idx.Len() {
		return nil, fmt.Errorf("cache: inconsistent record (%d texts, %d metas, %d rows, %d indexed): %w",
			len(texts), len(metas), len(embeddings), idx.Len(), domain.ErrNotFound)
	}

	chunks := make([]domain.Chunk, len(texts))
	for i := range texts {
		chunks[i] = domain.Chunk{Text: texts[i], Metadata: metas[i]}
	}

	createdAt, _ := time.Parse(time.RFC3339, meta.Timestamp)
	return &driven.CacheEntry{
		Identity:   id,
		SourceURL:  meta.URL,
		Model:      meta.Model,
		Chunks:     chunks,
		Embeddings: embeddings,
		Index:      idx,
		CreatedAt:  createdAt,
	}, nil
}

// path returns the artifact path for (identity, model) and a suffix.
func (s *CacheStore) path(id domain.Identity, suffix string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_%s", id, modelSlug(s.model), suffix))
}

func (s *CacheStore) writeJSON(id domain.Identity, suffix string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", suffix, err)
	}
	if err := os.WriteFile(s.path(id, suffix), data, 0o600); err != nil {
		return fmt.Errorf("cache: write %s: %w", suffix, err)
	}
	return nil
}

func (s *CacheStore) readJSON(id domain.Identity, suffix string, v any) error {
	data, err := os.ReadFile(s.path(id, suffix))
	if err != nil {
		return fmt.Errorf("cache: read %s: %w", suffix, domain.ErrNotFound)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cache: decode %s (%v): %w", suffix, err, domain.ErrNotFound)
	}
	return nil
}

// writeEmbeddings stores the matrix as little-endian float32 rows with a
// (dim, rows) header.
func (s *CacheStore) writeEmbeddings(id domain.Identity, embeddings [][]float32) error {
	dim := 0
	if len(embeddings) > 0 {
		dim = len(embeddings[0])
	}

	buf := make([]byte, 8, 8+len(embeddings)*dim*4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(dim))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(embeddings)))

	scratch := make([]byte, 4)
	for _, row := range embeddings {
		if len(row) != dim {
			return fmt.Errorf("cache: ragged embedding matrix: %w", domain.ErrDimensionMismatch)
		}
		for _, f := range row {
			binary.LittleEndian.PutUint32(scratch, math.Float32bits(f))
			buf = append(buf, scratch...)
		}
	}

	if err := os.WriteFile(s.path(id, suffixEmbeddings), buf, 0o600); err != nil {
		return fmt.Errorf("cache: write embeddings: %w", err)
	}
	return nil
}

func (s *CacheStore) readEmbeddings(id domain.Identity) ([][]float32, error) {
	data, err := os.ReadFile(s.path(id, suffixEmbeddings))
	if err != nil {
		return nil, fmt.Errorf("cache: read embeddings: %w", domain.ErrNotFound)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("cache: embeddings truncated: %w", domain.ErrNotFound)
	}

	dim := int(binary.LittleEndian.Uint32(data[0:4]))
	rows := int(binary.LittleEndian.Uint32(data[4:8]))
	if len(data) != 8+dim*rows*4 {
		return nil, fmt.Errorf("cache: embeddings size mismatch: %w", domain.ErrNotFound)
	}

	embeddings := make([][]float32, rows)
	off := 8
	for i := 0; i < rows; i++ {
		row := make([]float32, dim)
		for j := 0; j < dim; j++ {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		embeddings[i] = row
	}
	return embeddings, nil
}

// modelSlug makes a model name filesystem-safe. Different models must
// map to different slugs so their records never collide.
func modelSlug(model string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, model)
}
