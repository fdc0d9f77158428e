package chunker

import (
	"strings"
	"testing"

	"github.com/arcline-labs/askdoc/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.chunkSize)
		}
		if s.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.overlap)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(25))
		if s.chunkSize != 100 || s.overlap != 25 {
			t.Errorf("expected 100/25, got %d/%d", s.chunkSize, s.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.overlap >= s.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1))
		if s.chunkSize != DefaultChunkSize || s.overlap != DefaultChunkOverlap {
			t.Errorf("expected defaults, got %d/%d", s.chunkSize, s.overlap)
		}
	})
}

func TestSplit_EmptySections(t *testing.T) {
	s := New()

	chunks := s.Split([]domain.Section{
		{Text: ""},
		{Text: "   \n\t  "},
	})
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty sections, got %d", len(chunks))
	}

	if got := s.Split(nil); len(got) != 0 {
		t.Errorf("expected 0 chunks for nil input, got %d", len(got))
	}
}

func TestSplit_SmallSection(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	sec := domain.Section{
		Text:     "This is a small piece of content.",
		Metadata: map[string]any{"source": "doc.txt", "page": 3},
	}

	chunks := s.Split([]domain.Section{sec})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != sec.Text {
		t.Error("expected chunk text to match section text")
	}
	if chunks[0].Metadata["page"] != 3 {
		t.Errorf("expected metadata inherited, got %v", chunks[0].Metadata)
	}
}

func TestSplit_MetadataCopied(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	meta := map[string]any{"source": "doc.txt"}
	chunks := s.Split([]domain.Section{{Text: strings.Repeat("word ", 40), Metadata: meta}})

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	chunks[0].Metadata["source"] = "mutated"
	if meta["source"] != "doc.txt" {
		t.Error("chunk metadata must be a copy, not a reference to the section map")
	}
	if chunks[1].Metadata["source"] != "doc.txt" {
		t.Error("sibling chunk metadata affected by mutation")
	}
}

func TestSplit_PrefersSentenceBoundary(t *testing.T) {
	s := New(WithChunkSize(40), WithOverlap(10))
	text := "First sentence ends here. Second sentence is a bit longer than the first one."

	chunks := s.Split([]domain.Section{{Text: text}})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, ". ") {
		t.Errorf("expected first chunk to end at a sentence boundary, got %q", chunks[0].Text)
	}
}

func TestSplit_PrefersParagraphBoundary(t *testing.T) {
	s := New(WithChunkSize(40), WithOverlap(5))
	text := "Short opening paragraph here.\n\nSecond paragraph with more text following on."

	chunks := s.Split([]domain.Section{{Text: text}})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, "\n\n") {
		t.Errorf("expected first chunk to end at the paragraph break, got %q", chunks[0].Text)
	}
}

// Chunks with the overlap region deduplicated must reconstruct the
// original text exactly: nothing is dropped between chunk boundaries.
func TestSplit_CoverageReconstruction(t *testing.T) {
	const overlap = 20
	s := New(WithChunkSize(90), WithOverlap(overlap))

	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
		if i%7 == 0 {
			b.WriteString("\n\nNew paragraph starts here. ")
		}
	}
	text := b.String()

	chunks := s.Split([]domain.Section{{Text: text}})
	if len(chunks) < 5 {
		t.Fatalf("expected many chunks, got %d", len(chunks))
	}

	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0].Text)
	for _, c := range chunks[1:] {
		runes := []rune(c.Text)
		rebuilt.WriteString(string(runes[overlap:]))
	}
	if rebuilt.String() != text {
		t.Error("deduplicated chunks do not reconstruct the original text")
	}
}

func TestSplit_ConsecutiveOverlap(t *testing.T) {
	const overlap = 20
	s := New(WithChunkSize(80), WithOverlap(overlap))
	text := strings.Repeat("lorem ipsum dolor sit amet ", 30)

	chunks := s.Split([]domain.Section{{Text: text}})
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		cur := []rune(chunks[i].Text)
		tail := string(prev[len(prev)-overlap:])
		head := string(cur[:overlap])
		if tail != head {
			t.Fatalf("chunk %d does not overlap its predecessor: %q vs %q", i, tail, head)
		}
	}
}

func TestSplit_MultiByteRunes(t *testing.T) {
	s := New(WithChunkSize(30), WithOverlap(5))
	text := strings.Repeat("héllo wörld ünïcode tèxt ", 10)

	chunks := s.Split([]domain.Section{{Text: text}})
	for i, c := range chunks {
		if !strings.Contains(text, c.Text) {
			t.Errorf("chunk %d is not a substring of the input (rune split broken)", i)
		}
	}
}

func TestSplit_SectionOrderPreserved(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(10))
	sections := []domain.Section{
		{Text: "alpha section", Metadata: map[string]any{"page": 1}},
		{Text: "beta section", Metadata: map[string]any{"page": 2}},
		{Text: "gamma section", Metadata: map[string]any{"page": 3}},
	}

	chunks := s.Split(sections)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, want := range []int{1, 2, 3} {
		if chunks[i].Metadata["page"] != want {
			t.Errorf("chunk %d: expected page %d, got %v", i, want, chunks[i].Metadata["page"])
		}
	}
}
