package domain

// Candidate is one over-fetched search hit for a question, prior to
// reranking.
type Candidate struct {
	// Chunk is the retrieved chunk.
	Chunk Chunk

	// ID is the chunk's row in the document index.
	ID int

	// Distance is the L2 distance from the question embedding.
	Distance float32
}

// RerankOutcome records how a question's candidates were scored, so the
// distance-fallback path is an observable branch rather than a hidden
// side effect.
type RerankOutcome int

const (
	// RerankScored means the cross-encoder reranker produced the scores.
	RerankScored RerankOutcome = iota

	// RerankDegraded means the reranker hit a resource-exhaustion
	// condition and scores fell back to negated vector distance.
	RerankDegraded
)

// QuestionContext is the retrieval result for a single question.
type QuestionContext struct {
	// Question is the input question, unchanged.
	Question string

	// Context is the assembled context string. Empty means no
	// retrievable content was found; the caller must substitute a
	// "nothing found" answer rather than prompting a model with it.
	Context string

	// Outcome records which scoring path produced the ranking.
	Outcome RerankOutcome

	// Err is set when retrieval failed for this question. Other
	// questions in the same batch still complete.
	Err error
}
