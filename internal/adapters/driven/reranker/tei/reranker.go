// Package tei provides a cross-encoder reranker adapter for servers
// speaking the text-embeddings-inference rerank API (Hugging Face TEI
// and compatible inference servers).
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the rerank service.
type Config struct {
	// BaseURL is the rerank server base URL (default: http://localhost:8080).
	BaseURL string

	// Timeout is the per-call request timeout (default: 30s).
	Timeout time.Duration
}

// Reranker scores (query, candidate) pairs over HTTP.
type Reranker struct {
	client  *http.Client
	baseURL string
}

// rerankRequest is the TEI /rerank request format.
type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

// rerankResult is one element of the TEI /rerank response.
type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// New creates a new rerank adapter.
func New(cfg Config) *Reranker {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Reranker{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
	}
}

// Rerank returns one relevance score per candidate, in candidate order.
// An accelerator out-of-memory condition on the server is reported as an
// error wrapping domain.ErrResourceExhausted so callers can fall back to
// distance-based ranking.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	jsonBody, err := json.Marshal(rerankRequest{Query: query, Texts: candidates})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		r.baseURL+"/rerank",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("rerank error (status %d): failed to read response", resp.StatusCode)
		}
		if outOfMemory(resp.StatusCode, string(body)) {
			return nil, fmt.Errorf("rerank (status %d): %s: %w",
				resp.StatusCode, string(body), domain.ErrResourceExhausted)
		}
		return nil, fmt.Errorf("rerank error (status %d): %s", resp.StatusCode, string(body))
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(results) != len(candidates) {
		return nil, fmt.Errorf("rerank returned %d scores for %d candidates", len(results), len(candidates))
	}

	scores := make([]float64, len(candidates))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(scores) {
			return nil, fmt.Errorf("rerank returned out-of-range index %d", res.Index)
		}
		scores[res.Index] = res.Score
	}
	return scores, nil
}

// Close releases resources.
func (r *Reranker) Close() error {
	return nil
}

// outOfMemory classifies a failed response as accelerator memory
// exhaustion. TEI reports overload as 507; CUDA allocators phrase the
// condition as "out of memory".
func outOfMemory(status int, body string) bool {
	if status == http.StatusInsufficientStorage {
		return true
	}
	lower := strings.ToLower(body)
	return strings.Contains(lower, "out of memory") || strings.Contains(lower, "oom")
}
