package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
	"github.com/arcline-labs/askdoc/internal/core/ports/driving"
	"github.com/arcline-labs/askdoc/internal/logger"
	"github.com/arcline-labs/askdoc/internal/textclean"
)

// Ensure RetrievalService implements the interface.
var _ driving.Retriever = (*RetrievalService)(nil)

// Default retrieval parameters.
const (
	DefaultTopK              = 5
	DefaultQuestionBatchSize = 4
	DefaultConcurrency       = 4
)

// RetrievalConfig holds tuning knobs for the retrieval service.
type RetrievalConfig struct {
	// QuestionBatchSize caps the question-embedding batch (default: 4).
	QuestionBatchSize int

	// Concurrency bounds parallel per-question search/rerank work
	// (default: 4).
	Concurrency int
}

// RetrievalService finds relevant passages for a batch of questions
// using vector search followed by cross-encoder reranking.
type RetrievalService struct {
	embedder driven.EmbeddingService
	reranker driven.Reranker

	questionBatchSize int
	concurrency       int
}

// NewRetrievalService creates a new retrieval service. reranker may be
// nil; ranking then falls back to vector distance for every question.
func NewRetrievalService(embedder driven.EmbeddingService, reranker driven.Reranker, cfg RetrievalConfig) *RetrievalService {
	if cfg.QuestionBatchSize < 1 {
		cfg.QuestionBatchSize = DefaultQuestionBatchSize
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &RetrievalService{
		embedder:          embedder,
		reranker:          reranker,
		questionBatchSize: cfg.QuestionBatchSize,
		concurrency:       cfg.Concurrency,
	}
}

// RetrieveContexts returns one context per question, in input order.
func (s *RetrievalService) RetrieveContexts(
	ctx context.Context, questions []string, doc *domain.DocumentIndex, topK int,
) ([]domain.QuestionContext, error) {
	if len(questions) == 0 {
		return nil, nil
	}
	if topK < 1 {
		topK = DefaultTopK
	}

	results := make([]domain.QuestionContext, len(questions))
	for i, q := range questions {
		results[i] = domain.QuestionContext{Question: q}
	}

	if doc.Empty() {
		logger.Debug("Empty document index, returning empty contexts")
		return results, nil
	}

	logger.Section("Retrieval")
	logger.Debug("Questions: %d, topK: %d, chunks: %d", len(questions), topK, len(doc.Chunks))

	batch := s.questionBatchSize
	if len(questions) < batch {
		batch = len(questions)
	}
	queryVectors, err := s.embedder.EmbedBatch(ctx, questions, batch)
	if err != nil {
		return nil, fmt.Errorf("embed questions: %w", err)
	}

	sem := semaphore.NewWeighted(int64(s.concurrency))
	for i := range questions {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		go func(i int) {
			defer sem.Release(1)
			results[i] = s.retrieveOne(ctx, questions[i], queryVectors[i], doc, topK)
		}(i)
	}

	// Draining the semaphore waits for all workers.
	if err := sem.Acquire(ctx, int64(s.concurrency)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// retrieveOne runs search and reranking for a single question.
func (s *RetrievalService) retrieveOne(
	ctx context.Context, question string, query []float32, doc *domain.DocumentIndex, topK int,
) domain.QuestionContext {
	result := domain.QuestionContext{Question: question}

	// Over-fetch so the reranker has a wider pool than the final cut.
	pool := 2 * topK
	if n := doc.Index.Len(); pool > n {
		pool = n
	}

	distances, ids, err := doc.Index.Search(query, pool)
	if err != nil {
		result.Err = fmt.Errorf("vector search: %w", err)
		return result
	}

	candidates := make([]domain.Candidate, len(ids))
	texts := make([]string, len(ids))
	for i, id := range ids {
		candidates[i] = domain.Candidate{
			Chunk:    doc.Chunks[id],
			ID:       id,
			Distance: distances[i],
		}
		texts[i] = doc.Chunks[id].Text
	}

	scores, outcome, err := s.score(ctx, question, texts, distances)
	if err != nil {
		result.Err = err
		return result
	}
	result.Outcome = outcome

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > topK {
		order = order[:topK]
	}

	fragments := make([]string, 0, len(order))
	for _, idx := range order {
		c := candidates[idx].Chunk
		cleaned := textclean.Clean(c.Text, c.Metadata)
		if strings.TrimSpace(cleaned) == "" {
			continue
		}
		fragments = append(fragments, cleaned)
	}
	result.Context = strings.Join(fragments, "\n\n")
	return result
}

// score asks the reranker for relevance scores, degrading to negated
// vector distance when the reranker is exhausted or absent.
func (s *RetrievalService) score(
	ctx context.Context, question string, texts []string, distances []float32,
) ([]float64, domain.RerankOutcome, error) {
	if s.reranker == nil {
		return negatedDistances(distances), domain.RerankDegraded, nil
	}

	scores, err := s.reranker.Rerank(ctx, question, texts)
	if err == nil {
		return scores, domain.RerankScored, nil
	}
	if errors.Is(err, domain.ErrResourceExhausted) {
		logger.Warn("Reranker exhausted, falling back to distance ranking: %v", err)
		return negatedDistances(distances), domain.RerankDegraded, nil
	}
	return nil, domain.RerankScored, fmt.Errorf("rerank: %w", err)
}

// negatedDistances turns ascending distances into descending scores.
func negatedDistances(distances []float32) []float64 {
	scores := make([]float64, len(distances))
	for i, d := range distances {
		scores[i] = -float64(d)
	}
	return scores
}
