package models

// PageText is the raw text of a single document page as produced by the
// extractor. Page numbers are 1-based. Text may be empty for scanned or
// image-only pages; the splitter skips those.
type PageText struct {
	PDFName    string
	PageNumber int
	Text       string
}

// Chunk is one bounded span of a page's text, the retrieval granularity.
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
}

// StoredRow is one persisted chunk with its embedding vector. The vector
// length and semantics are fixed by the embedding model configured at
// ingestion time; querying with a different model yields meaningless
// similarity scores, so the same llm.embedding_model must be used for both.
type StoredRow struct {
	PDFName    string
	PageNumber int
	Content    string
	Embedding  []float32
}

// HybridQuery carries the parameters of one hybrid similarity search.
type HybridQuery struct {
	Embedding      []float32
	Text           string
	Threshold      float64
	Count          int
	SemanticWeight float64
}

// QueryMatch is one retrieved row with its blended score. Ephemeral,
// never persisted.
type QueryMatch struct {
	PDFName       string
	PageNumber    int
	Content       string
	CombinedScore float64
}

// Message roles for the conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a session's conversation history. Append-only,
// never mutated, discarded when the session ends.
type Message struct {
	Role    string
	Content string
}

// PromptResponse is the result of one full retrieve-and-answer cycle.
type PromptResponse struct {
	Query   string
	Source  string
	Content string
}
