package tei

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline-labs/askdoc/internal/core/domain"
)

func TestRerankScoresInCandidateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rerank", r.URL.Path)

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "what is the salary?", req.Query)
		require.Len(t, req.Texts, 3)

		// TEI returns results sorted by score, not input order.
		json.NewEncoder(w).Encode([]rerankResult{
			{Index: 2, Score: 0.97},
			{Index: 0, Score: 0.41},
			{Index: 1, Score: 0.02},
		})
	}))
	defer srv.Close()

	r := New(Config{BaseURL: srv.URL})
	scores, err := r.Rerank(context.Background(), "what is the salary?", []string{"A dog.", "A cat.", "Salary is 500."})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.41, 0.02, 0.97}, scores)
}

func TestRerankEmptyCandidates(t *testing.T) {
	r := New(Config{BaseURL: "http://localhost:1"})
	scores, err := r.Rerank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestRerankOutOfMemory(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"insufficient storage", http.StatusInsufficientStorage, "batch too large"},
		{"cuda oom", http.StatusInternalServerError, "CUDA out of memory. Tried to allocate 2.00 GiB"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tc.body, tc.status)
			}))
			defer srv.Close()

			r := New(Config{BaseURL: srv.URL})
			_, err := r.Rerank(context.Background(), "q", []string{"a", "b"})
			assert.True(t, errors.Is(err, domain.ErrResourceExhausted), "got: %v", err)
		})
	}
}

func TestRerankOtherServerErrorIsNotExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := New(Config{BaseURL: srv.URL})
	_, err := r.Rerank(context.Background(), "q", []string{"a"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrResourceExhausted))
}

func TestRerankScoreCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rerankResult{{Index: 0, Score: 1}})
	}))
	defer srv.Close()

	r := New(Config{BaseURL: srv.URL})
	_, err := r.Rerank(context.Background(), "q", []string{"a", "b"})
	assert.Error(t, err)
}
