package driving

import (
	"context"

	"github.com/arcline-labs/askdoc/internal/core/domain"
)

// Retriever answers "which passages are relevant" for a batch of
// questions against one already-loaded document.
type Retriever interface {
	// RetrieveContexts returns one QuestionContext per question, in
	// input order, regardless of internal execution order. Per-question
	// failures are carried in the results; the only whole-batch error
	// is context cancellation, which discards all results.
	RetrieveContexts(ctx context.Context, questions []string, doc *domain.DocumentIndex, topK int) ([]domain.QuestionContext, error)
}
