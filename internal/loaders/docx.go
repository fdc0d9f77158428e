package loaders

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// Ensure Docx implements the interface.
var _ driven.Loader = (*Docx)(nil)

// Docx handles Word documents in the OOXML format.
type Docx struct{}

// NewDocx creates a new DOCX loader.
func NewDocx() *Docx {
	return &Docx{}
}

// Extensions returns the file extensions this loader handles.
func (l *Docx) Extensions() []string {
	return []string{".docx"}
}

// Load extracts paragraph text from word/document.xml. Each paragraph
// becomes one section so paragraph boundaries survive into chunking.
func (l *Docx) Load(_ context.Context, path, sourceURL string) ([]domain.Section, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, domain.ErrInvalidInput)
	}
	defer reader.Close()

	paragraphs, err := extractParagraphs(&reader.Reader)
	if err != nil {
		return nil, err
	}

	sections := make([]domain.Section, 0, len(paragraphs))
	for _, p := range paragraphs {
		sections = append(sections, domain.Section{
			Text: p,
			Metadata: map[string]any{
				"source": sourceURL,
				"format": "docx",
			},
		})
	}
	return sections, nil
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// extractParagraphs returns the non-empty paragraph texts from
// word/document.xml, in document order.
func extractParagraphs(reader *zip.Reader) ([]string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open document.xml: %w", domain.ErrInvalidInput)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read document.xml: %w", domain.ErrInvalidInput)
		}

		var doc documentXML
		if err := xml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", domain.ErrInvalidInput)
		}

		var paragraphs []string
		for _, para := range doc.Body.Paragraphs {
			var sb strings.Builder
			for _, r := range para.Runs {
				for _, t := range r.Text {
					sb.WriteString(t.Content)
				}
			}
			text := strings.TrimSpace(sb.String())
			if text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
		return paragraphs, nil
	}
	return nil, nil
}
