package driven

import "context"

// LLMService generates an answer given a prompt. The retrieval core only
// depends on this opaque contract; provider semantics are the adapter's
// concern.
type LLMService interface {
	// Answer returns a completion for the given system and user
	// prompts.
	Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the model identifier in use.
	ModelName() string

	// Close releases resources.
	Close() error
}
