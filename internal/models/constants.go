package models

const (
	ContextSeparator = "\n---\n"

	// SourceBlockFormat labels one retrieved chunk inside the grounding
	// prompt: rank, document name, page number, combined score, content.
	SourceBlockFormat = "[Source %d - %s - Page %d - Score: %.3f]\n%s\n"

	// NoMatchesMessage is returned instead of calling the chat model when
	// nothing clears the match threshold.
	NoMatchesMessage = "No relevant documents found in the database to answer your question."
)

var GroundingPromptTemplate = `You are a helpful AI assistant. Answer the question based ONLY on the following context:

CONTEXT:
%s

QUESTION:
%s
`
