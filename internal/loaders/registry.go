// Package loaders extracts text sections from downloaded document
// files. Each loader handles a set of file extensions; the registry
// picks the loader for a given extension.
package loaders

import (
	"fmt"
	"strings"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps file extensions to loaders.
type Registry struct {
	byExt map[string]driven.Loader
}

// NewRegistry creates a registry with the given loaders. A later loader
// claiming an already-registered extension wins.
func NewRegistry(loaders ...driven.Loader) *Registry {
	r := &Registry{byExt: make(map[string]driven.Loader)}
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			r.byExt[strings.ToLower(ext)] = l
		}
	}
	return r
}

// DefaultRegistry creates a registry with all built-in loaders.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewPlaintext(),
		NewDocx(),
		NewPDF(),
	)
}

// ForExtension returns the loader for ext.
func (r *Registry) ForExtension(ext string) (driven.Loader, error) {
	l, ok := r.byExt[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("no loader for %q: %w", ext, domain.ErrUnsupportedType)
	}
	return l, nil
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
