package downloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline-labs/askdoc/internal/core/domain"
)

func TestFetchPreservesExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	d := New(Config{})
	p, cleanup, err := d.Fetch(context.Background(), srv.URL+"/files/contract.pdf?version=2")
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, ".pdf", filepath.Ext(p))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestFetchCleanupRemovesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	d := New(Config{})
	p, cleanup, err := d.Fetch(context.Background(), srv.URL+"/doc.txt")
	require.NoError(t, err)

	cleanup()
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d := New(Config{})
	_, _, err := d.Fetch(context.Background(), srv.URL+"/missing.pdf")
	assert.Error(t, err)
}

func TestFetchRejectsNonHTTPScheme(t *testing.T) {
	d := New(Config{})
	_, _, err := d.Fetch(context.Background(), "file:///etc/passwd")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestFetchRejectsOversizedDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	d := New(Config{MaxSize: 16})
	_, _, err := d.Fetch(context.Background(), srv.URL+"/big.bin")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
