package loaders

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// Ensure Plaintext implements the interface.
var _ driven.Loader = (*Plaintext)(nil)

// Plaintext handles plain text and markdown files.
type Plaintext struct{}

// NewPlaintext creates a new plain text loader.
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

// Extensions returns the file extensions this loader handles.
func (l *Plaintext) Extensions() []string {
	return []string{".txt", ".md", ".markdown", ".text"}
}

// Load reads the whole file as a single section.
func (l *Plaintext) Load(_ context.Context, path, sourceURL string) ([]domain.Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}

	return []domain.Section{{
		Text: text,
		Metadata: map[string]any{
			"source": sourceURL,
			"format": "text",
		},
	}}, nil
}
