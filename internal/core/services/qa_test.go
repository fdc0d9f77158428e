package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// fakeSession serves a fixed document index.
type fakeSession struct {
	doc *domain.DocumentIndex
	err error
}

func (f *fakeSession) EnsureLoaded(context.Context, string) (*domain.DocumentIndex, error) {
	return f.doc, f.err
}

func (f *fakeSession) Active() *domain.DocumentIndex { return f.doc }

// fakeRetriever returns canned contexts keyed by question.
type fakeRetriever struct {
	contexts map[string]domain.QuestionContext
	calls    int
}

func (f *fakeRetriever) RetrieveContexts(
	_ context.Context, questions []string, _ *domain.DocumentIndex, _ int,
) ([]domain.QuestionContext, error) {
	f.calls++
	out := make([]domain.QuestionContext, len(questions))
	for i, q := range questions {
		qc, ok := f.contexts[q]
		if !ok {
			qc = domain.QuestionContext{Question: q}
		}
		out[i] = qc
	}
	return out, nil
}

// echoLLM answers with a digest of its prompts.
type echoLLM struct {
	prompts []string
}

func (l *echoLLM) Answer(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	l.prompts = append(l.prompts, userPrompt)
	switch {
	case strings.Contains(userPrompt, "Salary is 500."):
		return "The salary is 500.", nil
	default:
		return "answered", nil
	}
}

func (l *echoLLM) ModelName() string { return "echo" }
func (l *echoLLM) Close() error      { return nil }

// captureLog records audit entries.
type captureLog struct {
	records []driven.RequestRecord
}

func (c *captureLog) Record(_ context.Context, rec driven.RequestRecord) error {
	c.records = append(c.records, rec)
	return nil
}

func (c *captureLog) Recent(context.Context, int) ([]driven.RequestRecord, error) {
	return c.records, nil
}

func (c *captureLog) Close() error { return nil }

func TestAnswerFullTextBypass(t *testing.T) {
	doc := testDoc(t) // three short chunks, far below any token threshold
	session := &fakeSession{doc: doc}
	retriever := &fakeRetriever{}
	llm := &echoLLM{}
	log := &captureLog{}

	svc := NewQAService(session, retriever, llm, log, QAConfig{LLMRequestsPerSecond: 1000})

	answers, err := svc.Answer(context.Background(),
		"https://example.com/doc.txt", []string{"What is the salary?"})
	require.NoError(t, err)
	require.Len(t, answers, 1)

	assert.Equal(t, "The salary is 500.", answers[0])
	assert.Equal(t, 0, retriever.calls, "small documents skip retrieval")
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Document:")

	require.Len(t, log.records, 1)
	assert.True(t, log.records[0].FullTextBypass)
	assert.Equal(t, []string{"The salary is 500."}, log.records[0].Answers)
}

func TestAnswerRetrievedPath(t *testing.T) {
	doc := testDoc(t)
	session := &fakeSession{doc: doc}
	retriever := &fakeRetriever{contexts: map[string]domain.QuestionContext{
		"What is the salary?": {Question: "What is the salary?", Context: "Salary is 500."},
	}}
	llm := &echoLLM{}
	log := &captureLog{}

	// TokenThreshold 1 forces the retrieval path even for a tiny document.
	svc := NewQAService(session, retriever, llm, log, QAConfig{
		TokenThreshold:       1,
		LLMRequestsPerSecond: 1000,
	})

	answers, err := svc.Answer(context.Background(),
		"https://example.com/doc.txt", []string{"What is the salary?"})
	require.NoError(t, err)

	assert.Equal(t, []string{"The salary is 500."}, answers)
	assert.Equal(t, 1, retriever.calls)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Context:")
	assert.False(t, log.records[0].FullTextBypass)
}

func TestAnswerEmptyContextGetsCannedAnswer(t *testing.T) {
	doc := testDoc(t)
	session := &fakeSession{doc: doc}
	retriever := &fakeRetriever{contexts: map[string]domain.QuestionContext{
		"What is the salary?": {Question: "What is the salary?", Context: "Salary is 500."},
	}}
	llm := &echoLLM{}

	svc := NewQAService(session, retriever, llm, nil, QAConfig{
		TokenThreshold:       1,
		LLMRequestsPerSecond: 1000,
	})

	answers, err := svc.Answer(context.Background(), "https://example.com/doc.txt",
		[]string{"Unanswerable question", "What is the salary?"})
	require.NoError(t, err)
	require.Len(t, answers, 2)

	assert.Equal(t, noAnswerText, answers[0])
	assert.Equal(t, "The salary is 500.", answers[1])
	// The LLM is never prompted with an empty context.
	require.Len(t, llm.prompts, 1)
}

func TestAnswerPerQuestionRetrievalFailure(t *testing.T) {
	doc := testDoc(t)
	session := &fakeSession{doc: doc}
	retriever := &fakeRetriever{contexts: map[string]domain.QuestionContext{
		"Broken question": {Question: "Broken question", Err: errors.New("search blew up")},
	}}
	llm := &echoLLM{}

	svc := NewQAService(session, retriever, llm, nil, QAConfig{
		TokenThreshold:       1,
		LLMRequestsPerSecond: 1000,
	})

	answers, err := svc.Answer(context.Background(), "https://example.com/doc.txt",
		[]string{"Broken question"})
	require.NoError(t, err)
	assert.Equal(t, []string{noAnswerText}, answers)
}

func TestAnswerInvalidInput(t *testing.T) {
	svc := NewQAService(&fakeSession{}, &fakeRetriever{}, &echoLLM{}, nil, QAConfig{})

	_, err := svc.Answer(context.Background(), "", []string{"q"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = svc.Answer(context.Background(), "https://example.com/doc.txt", nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAnswerLoadFailurePropagates(t *testing.T) {
	session := &fakeSession{err: domain.ErrEmptyDocument}
	svc := NewQAService(session, &fakeRetriever{}, &echoLLM{}, nil, QAConfig{})

	_, err := svc.Answer(context.Background(), "https://example.com/doc.txt", []string{"q"})
	assert.True(t, errors.Is(err, domain.ErrEmptyDocument))
}
