package services

import "fmt"

// noAnswerText is returned when retrieval found nothing usable for a
// question.
const noAnswerText = "I couldn't find relevant information in the document to answer this question."

// strictContextSystemPrompt confines the model to the retrieved
// passages.
const strictContextSystemPrompt = `You are a precise document question-answering assistant.
Answer the question using ONLY the provided context. If the context does
not contain the answer, say you could not find the information in the
document. Quote figures, dates and names exactly as they appear. Answer
concisely, in the language of the question.`

// fullTextSystemPrompt is used when the whole document fits in the
// prompt and retrieval is skipped.
const fullTextSystemPrompt = `You are a precise document question-answering assistant.
Answer the question using ONLY the provided document. If the document
does not contain the answer, say you could not find the information in
the document. Quote figures, dates and names exactly as they appear.
Answer concisely, in the language of the question.`

// contextUserPrompt assembles the user message for a retrieval-backed
// question.
func contextUserPrompt(context, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context, question)
}

// fullTextUserPrompt assembles the user message for the small-document
// bypass.
func fullTextUserPrompt(document, question string) string {
	return fmt.Sprintf("Document:\n%s\n\nQuestion: %s", document, question)
}
