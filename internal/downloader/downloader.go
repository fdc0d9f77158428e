// Package downloader fetches remote documents to temporary files so
// format-specific loaders can parse them from disk.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// Ensure Downloader implements the interface.
var _ driven.Downloader = (*Downloader)(nil)

// Default configuration values.
const (
	DefaultTimeout = 120 * time.Second
	DefaultMaxSize = 256 << 20 // 256 MiB
)

// Config holds configuration for the downloader.
type Config struct {
	// Timeout is the whole-download timeout (default: 120s).
	Timeout time.Duration

	// MaxSize caps the downloaded file size in bytes (default: 256 MiB).
	MaxSize int64
}

// Downloader fetches documents over HTTP(S).
type Downloader struct {
	client  *http.Client
	maxSize int64
}

// New creates a new downloader.
func New(cfg Config) *Downloader {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultMaxSize
	}

	return &Downloader{
		client:  &http.Client{Timeout: cfg.Timeout},
		maxSize: cfg.MaxSize,
	}
}

// Fetch downloads rawURL to a temporary file whose name keeps the URL
// path's extension. The returned cleanup removes the file.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (string, func(), error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("parse url: %v: %w", err, domain.ErrInvalidInput)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", nil, fmt.Errorf("unsupported scheme %q: %w", parsed.Scheme, domain.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	f, err := os.CreateTemp("", "askdoc-*"+path.Ext(parsed.Path))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	n, err := io.Copy(f, io.LimitReader(resp.Body, d.maxSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write %s: %w", f.Name(), err)
	}
	if n > d.maxSize {
		cleanup()
		return "", nil, fmt.Errorf("document exceeds %d bytes: %w", d.maxSize, domain.ErrInvalidInput)
	}

	return f.Name(), cleanup, nil
}
