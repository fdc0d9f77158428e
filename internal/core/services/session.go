package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
	"github.com/arcline-labs/askdoc/internal/core/ports/driving"
	"github.com/arcline-labs/askdoc/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionStore = (*SessionService)(nil)

// DefaultEmbedBatchSize is the chunk-embedding batch size.
const DefaultEmbedBatchSize = 32

// Splitter cuts loaded sections into retrieval chunks.
type Splitter interface {
	Split(sections []domain.Section) []domain.Chunk
}

// SessionService holds the single currently-loaded document and builds
// indexes on demand. The active slot is replaced wholesale; readers
// always see either the old complete index or the new complete index.
type SessionService struct {
	downloader driven.Downloader
	registry   driven.LoaderRegistry
	splitter   Splitter
	embedder   driven.EmbeddingService
	builder    driven.IndexBuilder
	cache      driven.CacheStore

	embedBatchSize int

	mu     sync.RWMutex
	active *domain.DocumentIndex

	group singleflight.Group
}

// NewSessionService creates a new session service. cache may be nil to
// disable durable caching.
func NewSessionService(
	downloader driven.Downloader,
	registry driven.LoaderRegistry,
	splitter Splitter,
	embedder driven.EmbeddingService,
	builder driven.IndexBuilder,
	cache driven.CacheStore,
) *SessionService {
	return &SessionService{
		downloader:     downloader,
		registry:       registry,
		splitter:       splitter,
		embedder:       embedder,
		builder:        builder,
		cache:          cache,
		embedBatchSize: DefaultEmbedBatchSize,
	}
}

// Active returns the currently loaded index, or nil.
func (s *SessionService) Active() *domain.DocumentIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// EnsureLoaded returns the index for url, building it if needed.
// Concurrent calls for the same document share one load.
func (s *SessionService) EnsureLoaded(ctx context.Context, url string) (*domain.DocumentIndex, error) {
	if url == "" {
		return nil, fmt.Errorf("empty document url: %w", domain.ErrInvalidInput)
	}
	id := domain.IdentityFromURL(url)

	if doc := s.activeFor(id); doc != nil {
		logger.Debug("Document %s already active", id)
		return doc, nil
	}

	result, err, _ := s.group.Do(id.String(), func() (any, error) {
		// A concurrent caller may have finished the load while this one
		// waited on the singleflight slot.
		if doc := s.activeFor(id); doc != nil {
			return doc, nil
		}

		doc, err := s.load(ctx, id, url)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.active = doc
		s.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.DocumentIndex), nil
}

// activeFor returns the active index if it is the document identified by
// id, or nil.
func (s *SessionService) activeFor(id domain.Identity) *domain.DocumentIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active != nil && s.active.Identity == id {
		return s.active
	}
	return nil
}

// load resolves a document index from the durable cache or from source.
func (s *SessionService) load(ctx context.Context, id domain.Identity, url string) (*domain.DocumentIndex, error) {
	logger.Section("Document Load")
	logger.Info("Loading document %s (%s)", url, id)

	if s.cache != nil {
		entry, err := s.cache.Load(ctx, id)
		if err == nil {
			logger.Info("Cache hit: %d chunks", len(entry.Chunks))
			return &domain.DocumentIndex{
				Identity:   id,
				SourceURL:  entry.SourceURL,
				Chunks:     entry.Chunks,
				Embeddings: entry.Embeddings,
				Index:      entry.Index,
			}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Cache load failed: %v", err)
		} else {
			logger.Debug("Cache miss for %s", id)
		}
	}

	doc, err := s.build(ctx, id, url)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Caching is best-effort; a failed save never fails the load.
		saveErr := s.cache.Save(ctx, driven.CacheEntry{
			Identity:   id,
			SourceURL:  url,
			Model:      s.embedder.ModelName(),
			Chunks:     doc.Chunks,
			Embeddings: doc.Embeddings,
			Index:      doc.Index,
			CreatedAt:  time.Now(),
		})
		if saveErr != nil {
			logger.Warn("Cache save failed: %v", saveErr)
		}
	}

	return doc, nil
}

// build downloads, parses, chunks, embeds and indexes the document.
func (s *SessionService) build(ctx context.Context, id domain.Identity, url string) (*domain.DocumentIndex, error) {
	path, cleanup, err := s.downloader.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	defer cleanup()

	loader, err := s.registry.ForExtension(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	sections, err := loader.Load(ctx, path, url)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	logger.Debug("Loaded %d sections", len(sections))

	chunks := s.splitter.Split(sections)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s: %w", url, domain.ErrEmptyDocument)
	}
	logger.Info("Split into %d chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts, s.embedBatchSize)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	index, err := s.builder.Build(embeddings)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	logger.Debug("Index built: %d vectors, %d dimensions", index.Len(), index.Dimensions())

	return &domain.DocumentIndex{
		Identity:   id,
		SourceURL:  url,
		Chunks:     chunks,
		Embeddings: embeddings,
		Index:      index,
	}, nil
}
