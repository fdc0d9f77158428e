package driving

import "context"

// QAService answers natural-language questions against one document.
type QAService interface {
	// Answer loads (or reuses) the document at url and answers every
	// question, returning one answer per question in input order.
	Answer(ctx context.Context, url string, questions []string) ([]string, error)
}
