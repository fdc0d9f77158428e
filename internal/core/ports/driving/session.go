package driving

import (
	"context"

	"github.com/arcline-labs/askdoc/internal/core/domain"
)

// SessionStore manages the single-slot, process-wide cache of the
// currently loaded document.
type SessionStore interface {
	// EnsureLoaded returns the document index for url, loading and
	// indexing it if it is not the active document and not in the
	// durable cache. Concurrent calls for the same identity perform at
	// most one load/index/save sequence. The returned index is
	// read-only and immutable.
	EnsureLoaded(ctx context.Context, url string) (*domain.DocumentIndex, error)

	// Active returns the currently loaded index, or nil.
	Active() *domain.DocumentIndex
}
