package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline-labs/askdoc/internal/adapters/driven/vectorindex/flat"
	"github.com/arcline-labs/askdoc/internal/chunker"
	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
	"github.com/arcline-labs/askdoc/internal/loaders"
)

// fakeDownloader serves fixed content as a local .txt file and counts
// fetches.
type fakeDownloader struct {
	content string
	fetches atomic.Int32
	dir     string
}

func (f *fakeDownloader) Fetch(_ context.Context, url string) (string, func(), error) {
	f.fetches.Add(1)
	path := filepath.Join(f.dir, "doc.txt")
	if err := os.WriteFile(path, []byte(f.content), 0o600); err != nil {
		return "", nil, err
	}
	return path, func() {}, nil
}

// lengthEmbedder maps each text to a deterministic 2-d vector.
type lengthEmbedder struct{}

func (lengthEmbedder) EmbedBatch(_ context.Context, texts []string, _ int) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (lengthEmbedder) Dimensions() int            { return 2 }
func (lengthEmbedder) ModelName() string          { return "length-embed" }
func (lengthEmbedder) Ping(context.Context) error { return nil }
func (lengthEmbedder) Close() error               { return nil }

// memoryCache is an in-memory CacheStore.
type memoryCache struct {
	mu      sync.Mutex
	entries map[domain.Identity]driven.CacheEntry
	saves   int
	loads   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[domain.Identity]driven.CacheEntry)}
}

func (c *memoryCache) Save(_ context.Context, entry driven.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	c.entries[entry.Identity] = entry
	return nil
}

func (c *memoryCache) Load(_ context.Context, id domain.Identity) (*driven.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	entry, ok := c.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func newTestSession(t *testing.T, content string) (*SessionService, *fakeDownloader, *memoryCache) {
	t.Helper()

	dl := &fakeDownloader{content: content, dir: t.TempDir()}
	cache := newMemoryCache()
	svc := NewSessionService(
		dl,
		loaders.DefaultRegistry(),
		chunker.New(),
		lengthEmbedder{},
		flat.NewBuilder(),
		cache,
	)
	return svc, dl, cache
}

func TestEnsureLoadedBuildsAndCaches(t *testing.T) {
	svc, dl, cache := newTestSession(t, "The salary is 500 euro per month.\n\nThe notice period is 30 days.")

	doc, err := svc.EnsureLoaded(context.Background(), "https://example.com/contract.txt")
	require.NoError(t, err)

	assert.Equal(t, domain.IdentityFromURL("https://example.com/contract.txt"), doc.Identity)
	assert.NotEmpty(t, doc.Chunks)
	assert.Len(t, doc.Embeddings, len(doc.Chunks))
	assert.Equal(t, len(doc.Chunks), doc.Index.Len())
	assert.Equal(t, int32(1), dl.fetches.Load())
	assert.Equal(t, 1, cache.saves)
	assert.Same(t, doc, svc.Active())
}

func TestEnsureLoadedMemoryHit(t *testing.T) {
	svc, dl, _ := newTestSession(t, "Some document text.")
	ctx := context.Background()

	first, err := svc.EnsureLoaded(ctx, "https://example.com/a.txt")
	require.NoError(t, err)
	second, err := svc.EnsureLoaded(ctx, "https://example.com/a.txt")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), dl.fetches.Load())
}

func TestEnsureLoadedCacheHit(t *testing.T) {
	svc, dl, cache := newTestSession(t, "Some document text.")
	ctx := context.Background()

	_, err := svc.EnsureLoaded(ctx, "https://example.com/a.txt")
	require.NoError(t, err)

	// A fresh service with the same cache must not refetch.
	svc2 := NewSessionService(
		dl, loaders.DefaultRegistry(), chunker.New(),
		lengthEmbedder{}, flat.NewBuilder(), cache,
	)
	doc, err := svc2.EnsureLoaded(ctx, "https://example.com/a.txt")
	require.NoError(t, err)

	assert.NotEmpty(t, doc.Chunks)
	assert.Equal(t, int32(1), dl.fetches.Load())
}

func TestEnsureLoadedReplacesActive(t *testing.T) {
	svc, _, _ := newTestSession(t, "Some document text.")
	ctx := context.Background()

	_, err := svc.EnsureLoaded(ctx, "https://example.com/a.txt")
	require.NoError(t, err)
	docB, err := svc.EnsureLoaded(ctx, "https://example.com/b.txt")
	require.NoError(t, err)

	assert.Same(t, docB, svc.Active())
	assert.Equal(t, domain.IdentityFromURL("https://example.com/b.txt"), svc.Active().Identity)
}

func TestEnsureLoadedEmptyDocument(t *testing.T) {
	svc, _, _ := newTestSession(t, "   \n\n  ")

	_, err := svc.EnsureLoaded(context.Background(), "https://example.com/empty.txt")
	assert.True(t, errors.Is(err, domain.ErrEmptyDocument))
}

func TestEnsureLoadedEmptyURL(t *testing.T) {
	svc, _, _ := newTestSession(t, "text")

	_, err := svc.EnsureLoaded(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestEnsureLoadedDeduplicatesConcurrentLoads(t *testing.T) {
	svc, dl, _ := newTestSession(t, "Some document text.")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.EnsureLoaded(ctx, "https://example.com/a.txt")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), dl.fetches.Load())
}
