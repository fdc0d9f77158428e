package driven

import (
	"context"

	"github.com/arcline-labs/askdoc/internal/core/domain"
)

// Loader extracts text sections from a downloaded document file.
// Each loader handles specific file extensions.
type Loader interface {
	// Extensions returns the lowercase file extensions this loader
	// handles, including the leading dot (".pdf").
	Extensions() []string

	// Load parses the file at path into ordered sections. sourceURL is
	// recorded in each section's metadata. Zero sections is not an
	// error here; the caller maps it to domain.ErrEmptyDocument.
	Load(ctx context.Context, path, sourceURL string) ([]domain.Section, error)
}

// LoaderRegistry selects a loader by file extension.
type LoaderRegistry interface {
	// ForExtension returns the loader for ext (lowercase, with dot), or
	// an error wrapping domain.ErrUnsupportedType when none is
	// registered.
	ForExtension(ext string) (Loader, error)
}

// Downloader fetches a remote document to local disk.
type Downloader interface {
	// Fetch downloads url to a temporary file, preserving the URL
	// path's extension so a loader can be selected. cleanup removes
	// the file and is never nil on success.
	Fetch(ctx context.Context, url string) (path string, cleanup func(), err error)
}
