package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
	"github.com/arcline-labs/askdoc/internal/core/ports/driving"
	"github.com/arcline-labs/askdoc/internal/logger"
	"github.com/arcline-labs/askdoc/internal/tokencount"
)

// Ensure QAService implements the interface.
var _ driving.QAService = (*QAService)(nil)

// Default QA parameters.
const (
	DefaultQATopK          = 5
	DefaultTokenThreshold  = 8000
	DefaultLLMConcurrency  = 2
	DefaultLLMRequestsPerS = 1
)

// QAConfig holds tuning knobs for the QA service.
type QAConfig struct {
	// TopK is the number of passages per question (default: 5).
	TopK int

	// TokenThreshold is the estimated-token count under which the whole
	// document is sent instead of retrieved passages (default: 8000).
	TokenThreshold int

	// LLMConcurrency caps in-flight LLM calls (default: 2).
	LLMConcurrency int

	// LLMRequestsPerSecond is the LLM call rate limit (default: 1).
	LLMRequestsPerSecond float64
}

// QAService answers questions against one document: load, retrieve,
// prompt, with a full-text bypass for small documents.
type QAService struct {
	session    driving.SessionStore
	retriever  driving.Retriever
	llm        driven.LLMService
	requestLog driven.RequestLogStore

	topK           int
	tokenThreshold int
	llmSem         *semaphore.Weighted
	llmLimiter     *rate.Limiter
}

// NewQAService creates a new QA service. requestLog may be nil to
// disable the audit log.
func NewQAService(
	session driving.SessionStore,
	retriever driving.Retriever,
	llm driven.LLMService,
	requestLog driven.RequestLogStore,
	cfg QAConfig,
) *QAService {
	if cfg.TopK < 1 {
		cfg.TopK = DefaultQATopK
	}
	if cfg.TokenThreshold < 1 {
		cfg.TokenThreshold = DefaultTokenThreshold
	}
	if cfg.LLMConcurrency < 1 {
		cfg.LLMConcurrency = DefaultLLMConcurrency
	}
	if cfg.LLMRequestsPerSecond <= 0 {
		cfg.LLMRequestsPerSecond = DefaultLLMRequestsPerS
	}

	return &QAService{
		session:        session,
		retriever:      retriever,
		llm:            llm,
		requestLog:     requestLog,
		topK:           cfg.TopK,
		tokenThreshold: cfg.TokenThreshold,
		llmSem:         semaphore.NewWeighted(int64(cfg.LLMConcurrency)),
		llmLimiter:     rate.NewLimiter(rate.Limit(cfg.LLMRequestsPerSecond), cfg.LLMConcurrency),
	}
}

// Answer answers every question against the document at url, one answer
// per question in input order.
func (s *QAService) Answer(ctx context.Context, url string, questions []string) ([]string, error) {
	if url == "" || len(questions) == 0 {
		return nil, fmt.Errorf("url and questions are required: %w", domain.ErrInvalidInput)
	}

	start := time.Now()

	doc, err := s.session.EnsureLoaded(ctx, url)
	if err != nil {
		return nil, err
	}

	fullText := doc.FullText()
	bypass := tokencount.Estimate(fullText) <= s.tokenThreshold

	var answers []string
	if bypass {
		logger.Info("Small document, answering from full text")
		answers, err = s.answerFullText(ctx, fullText, questions)
	} else {
		answers, err = s.answerRetrieved(ctx, doc, questions)
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, driven.RequestRecord{
		ID:             uuid.New().String(),
		DocumentURL:    url,
		Questions:      questions,
		Answers:        answers,
		FullTextBypass: bypass,
		Duration:       time.Since(start),
		CreatedAt:      time.Now(),
	})

	return answers, nil
}

// answerFullText prompts with the entire document for each question.
func (s *QAService) answerFullText(ctx context.Context, fullText string, questions []string) ([]string, error) {
	answers := make([]string, len(questions))
	for i, q := range questions {
		answer, err := s.ask(ctx, fullTextSystemPrompt, fullTextUserPrompt(fullText, q))
		if err != nil {
			return nil, fmt.Errorf("answer question %d: %w", i+1, err)
		}
		answers[i] = answer
	}
	return answers, nil
}

// answerRetrieved runs retrieval and prompts with per-question contexts.
func (s *QAService) answerRetrieved(
	ctx context.Context, doc *domain.DocumentIndex, questions []string,
) ([]string, error) {
	contexts, err := s.retriever.RetrieveContexts(ctx, questions, doc, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve contexts: %w", err)
	}

	answers := make([]string, len(questions))
	for i, qc := range contexts {
		if qc.Err != nil {
			logger.Warn("Retrieval failed for question %d: %v", i+1, qc.Err)
			answers[i] = noAnswerText
			continue
		}
		if qc.Context == "" {
			answers[i] = noAnswerText
			continue
		}
		if qc.Outcome == domain.RerankDegraded {
			logger.Debug("Question %d answered with distance-ranked context", i+1)
		}

		answer, err := s.ask(ctx, strictContextSystemPrompt, contextUserPrompt(qc.Context, qc.Question))
		if err != nil {
			return nil, fmt.Errorf("answer question %d: %w", i+1, err)
		}
		answers[i] = answer
	}
	return answers, nil
}

// ask calls the LLM under the shared rate limit and concurrency cap.
func (s *QAService) ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := s.llmLimiter.Wait(ctx); err != nil {
		return "", err
	}
	if err := s.llmSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.llmSem.Release(1)

	return s.llm.Answer(ctx, systemPrompt, userPrompt)
}

// record appends to the audit log, best-effort.
func (s *QAService) record(ctx context.Context, rec driven.RequestRecord) {
	if s.requestLog == nil {
		return
	}
	if err := s.requestLog.Record(ctx, rec); err != nil {
		logger.Warn("Request log write failed: %v", err)
	}
}
