// Package chunker splits extracted document text into overlapping
// fixed-size passages, preferring natural boundaries over hard cuts.
package chunker

import (
	"strings"

	"github.com/arcline-labs/askdoc/internal/core/domain"
)

// DefaultChunkSize is the default target number of characters per chunk.
const DefaultChunkSize = 512

// DefaultChunkOverlap is the default number of overlapping characters
// between consecutive chunks.
const DefaultChunkOverlap = 150

// Splitter cuts document sections into overlapping chunks. Each chunk
// inherits its source section's metadata unchanged.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave room for forward progress.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split cuts every section into chunks, in section order. Empty or
// whitespace-only sections yield no chunks; an entirely empty result is
// the caller's signal to fail with domain.ErrEmptyDocument.
func (s *Splitter) Split(sections []domain.Section) []domain.Chunk {
	var chunks []domain.Chunk
	for _, sec := range sections {
		chunks = append(chunks, s.splitSection(sec)...)
	}
	return chunks
}

func (s *Splitter) splitSection(sec domain.Section) []domain.Chunk {
	if strings.TrimSpace(sec.Text) == "" {
		return nil
	}

	runes := []rune(sec.Text)
	if len(runes) <= s.chunkSize {
		return []domain.Chunk{{
			Text:     sec.Text,
			Metadata: copyMetadata(sec.Metadata),
		}}
	}

	estimated := len(runes)/(s.chunkSize-s.overlap) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = boundary(runes, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			Text:     string(runes[start:end]),
			Metadata: copyMetadata(sec.Metadata),
		})

		if end == len(runes) {
			break
		}

		next := end - s.overlap
		if next <= start {
			// Guarantee forward progress when a boundary cut
			// produced a chunk shorter than the overlap.
			next = start + 1
		}
		start = next
	}

	return chunks
}

// boundary finds the best cut point in (min, limit], searching backwards
// from limit for a paragraph break, then a sentence end, then a word
// break, before falling back to the hard character cut at limit. The cut
// never lands in the first half of the chunk.
func boundary(runes []rune, start, limit int) int {
	min := start + (limit-start)/2

	if i := lastParagraphBreak(runes, min, limit); i > min {
		return i
	}
	if i := lastSentenceEnd(runes, min, limit); i > min {
		return i
	}
	if i := lastWordBreak(runes, min, limit); i > min {
		return i
	}
	return limit
}

func lastParagraphBreak(runes []rune, min, limit int) int {
	for i := limit; i > min; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}
	return -1
}

func lastSentenceEnd(runes []rune, min, limit int) int {
	for i := limit; i > min; i-- {
		r := runes[i-1]
		if r == '\n' {
			return i
		}
		if (r == ' ') && i >= 2 {
			switch runes[i-2] {
			case '.', '!', '?':
				return i
			}
		}
	}
	return -1
}

func lastWordBreak(runes []rune, min, limit int) int {
	for i := limit; i > min; i-- {
		if runes[i-1] == ' ' || runes[i-1] == '\t' {
			return i
		}
	}
	return -1
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
