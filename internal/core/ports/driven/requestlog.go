package driven

import (
	"context"
	"time"
)

// RequestRecord is one answered request, kept for auditing.
type RequestRecord struct {
	// ID is the request identifier.
	ID string

	// DocumentURL is the document the questions were asked against.
	DocumentURL string

	// Questions are the input questions.
	Questions []string

	// Answers are the produced answers, same order as Questions.
	Answers []string

	// FullTextBypass records whether retrieval was skipped for a small
	// document.
	FullTextBypass bool

	// Duration is the wall-clock time the request took.
	Duration time.Duration

	// CreatedAt is when the request completed.
	CreatedAt time.Time
}

// RequestLogStore persists answered requests. Logging is best-effort:
// callers log and continue on failure.
type RequestLogStore interface {
	// Record stores one request/response pair.
	Record(ctx context.Context, rec RequestRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]RequestRecord, error)

	// Close releases resources.
	Close() error
}
