package loaders

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// Ensure PDF implements the interface.
var _ driven.Loader = (*PDF)(nil)

// PDF handles PDF documents via MuPDF.
type PDF struct{}

// NewPDF creates a new PDF loader.
func NewPDF() *PDF {
	return &PDF{}
}

// Extensions returns the file extensions this loader handles.
func (l *PDF) Extensions() []string {
	return []string{".pdf"}
}

// Load extracts text per page. Pages are 1-based in metadata; empty
// pages are skipped.
func (l *PDF) Load(_ context.Context, path, sourceURL string) ([]domain.Section, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, domain.ErrInvalidInput)
	}
	defer doc.Close()

	var sections []domain.Section
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i+1, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sections = append(sections, domain.Section{
			Text: text,
			Metadata: map[string]any{
				"source": sourceURL,
				"format": "pdf",
				"page":   i + 1,
			},
		})
	}
	return sections, nil
}
