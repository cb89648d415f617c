package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
)

type fakeExtractor struct {
	pages []models.PageText
	err   error
}

func (f *fakeExtractor) Extract(path string) ([]models.PageText, error) {
	return f.pages, f.err
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

type fakeStore struct {
	rows     []models.StoredRow
	matches  []models.QueryMatch
	queryErr error
}

func (f *fakeStore) Insert(ctx context.Context, rows []models.StoredRow) error {
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeStore) SearchHybrid(ctx context.Context, q models.HybridQuery) ([]models.QueryMatch, error) {
	return f.matches, f.queryErr
}

type fakeChat struct {
	answer string
	err    error
	calls  int
}

func (f *fakeChat) Call(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		RAG: config.RAGConfig{
			ChunkSize:      1000,
			ChunkOverlap:   150,
			MatchThreshold: 0.3,
			MatchCount:     5,
			SemanticWeight: 0.7,
			MaxRetries:     1,
		},
	}
}

func TestBuildPrompt_OrderAndFormatting(t *testing.T) {
	matches := []models.QueryMatch{
		{PDFName: "A", PageNumber: 1, CombinedScore: 0.812, Content: "X"},
	}

	prompt := BuildPrompt("Q?", matches)

	pagePos := strings.Index(prompt, "Page 1")
	scorePos := strings.Index(prompt, "0.812")
	// "CONTEXT:" also contains an X, so anchor the content lookup to the
	// block body.
	contentPos := strings.Index(prompt, "\nX\n")
	questionPos := strings.Index(prompt, "Q?")

	require.GreaterOrEqual(t, pagePos, 0)
	require.GreaterOrEqual(t, scorePos, 0)
	require.GreaterOrEqual(t, contentPos, 0)
	require.GreaterOrEqual(t, questionPos, 0)

	assert.Less(t, pagePos, scorePos)
	assert.Less(t, scorePos, contentPos)
	assert.Less(t, contentPos, questionPos)
	assert.Contains(t, prompt, "[Source 1 - A - Page 1 - Score: 0.812]")
	assert.Contains(t, prompt, "ONLY")
}

func TestBuildPrompt_SeparatesBlocks(t *testing.T) {
	matches := []models.QueryMatch{
		{PDFName: "A", PageNumber: 1, CombinedScore: 0.9, Content: "first"},
		{PDFName: "A", PageNumber: 2, CombinedScore: 0.8, Content: "second"},
	}

	prompt := BuildPrompt("Q?", matches)

	assert.Contains(t, prompt, models.ContextSeparator)
	assert.Less(t, strings.Index(prompt, "first"), strings.Index(prompt, "second"))
}

func TestQuery_NoMatchesSkipsChatModel(t *testing.T) {
	chat := &fakeChat{answer: "should never be used"}
	r := NewRAG(&fakeExtractor{}, &fakeEmbedder{}, &fakeStore{}, chat, testConfig())

	resp, err := r.Query(context.Background(), "unanswerable?")

	require.NoError(t, err)
	assert.Equal(t, models.NoMatchesMessage, resp.Content)
	assert.Zero(t, chat.calls, "chat model must not be called with empty context")
}

func TestQuery_AnswersFromMatches(t *testing.T) {
	store := &fakeStore{matches: []models.QueryMatch{
		{PDFName: "guide.pdf", PageNumber: 3, CombinedScore: 0.75, Content: "relevant text"},
	}}
	chat := &fakeChat{answer: "grounded answer"}
	r := NewRAG(&fakeExtractor{}, &fakeEmbedder{}, store, chat, testConfig())

	resp, err := r.Query(context.Background(), "What?")

	require.NoError(t, err)
	assert.Equal(t, "grounded answer", resp.Content)
	assert.Equal(t, 1, chat.calls)
	assert.Contains(t, resp.Source, "1. guide.pdf - Page 3 (score 0.750)")
}

func TestQuery_EmbeddingFailureRendersErrorString(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedding service: connection refused")}
	chat := &fakeChat{}
	r := NewRAG(&fakeExtractor{}, embedder, &fakeStore{}, chat, testConfig())

	resp, err := r.Query(context.Background(), "Q?")
	require.Error(t, err)
	assert.Zero(t, chat.calls)

	rendered := RenderAnswer(resp, err)
	assert.True(t, strings.HasPrefix(rendered, "Error: "), "got %q", rendered)
}

func TestQuery_ChatFailureRendersErrorString(t *testing.T) {
	store := &fakeStore{matches: []models.QueryMatch{
		{PDFName: "guide.pdf", PageNumber: 1, CombinedScore: 0.8, Content: "text"},
	}}
	chat := &fakeChat{err: errors.New("chat service: quota exceeded")}
	r := NewRAG(&fakeExtractor{}, &fakeEmbedder{}, store, chat, testConfig())

	resp, err := r.Query(context.Background(), "Q?")
	require.Error(t, err)

	rendered := RenderAnswer(resp, err)
	assert.True(t, strings.HasPrefix(rendered, "Error: "))
	assert.Contains(t, rendered, "quota exceeded")
}

func TestIngest_TwoPageDocument(t *testing.T) {
	// Page 1 carries 1500 chars, page 2 is a scanned page with no text:
	// with chunk size 1000 and overlap 150 that is exactly 2 rows, all
	// from page 1.
	extractor := &fakeExtractor{pages: []models.PageText{
		{PDFName: "ebook.pdf", PageNumber: 1, Text: strings.Repeat("word ", 300)},
		{PDFName: "ebook.pdf", PageNumber: 2, Text: ""},
	}}
	store := &fakeStore{}
	embedder := &fakeEmbedder{}
	r := NewRAG(extractor, embedder, store, &fakeChat{}, testConfig())

	n, err := r.Ingest(context.Background(), "/data/ebook.pdf")

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, store.rows, 2)
	assert.Equal(t, 2, embedder.calls)
	for _, row := range store.rows {
		assert.Equal(t, "ebook.pdf", row.PDFName)
		assert.Equal(t, 1, row.PageNumber)
		assert.NotEmpty(t, row.Content)
		assert.NotEmpty(t, row.Embedding)
	}
}

func TestIngest_EmptyDocumentWritesNothing(t *testing.T) {
	extractor := &fakeExtractor{pages: []models.PageText{
		{PDFName: "scan.pdf", PageNumber: 1, Text: ""},
	}}
	store := &fakeStore{}
	r := NewRAG(extractor, &fakeEmbedder{}, store, &fakeChat{}, testConfig())

	n, err := r.Ingest(context.Background(), "/data/scan.pdf")

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.rows)
}

func TestIngest_MissingFilePropagatesNotFound(t *testing.T) {
	extractor := &fakeExtractor{err: models.ErrNotFound}
	r := NewRAG(extractor, &fakeEmbedder{}, &fakeStore{}, &fakeChat{}, testConfig())

	_, err := r.Ingest(context.Background(), "/data/absent.pdf")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestChunks_DryRunSplitsWithoutEmbedding(t *testing.T) {
	extractor := &fakeExtractor{pages: []models.PageText{
		{PDFName: "ebook.pdf", PageNumber: 1, Text: strings.Repeat("word ", 300)},
	}}
	embedder := &fakeEmbedder{}
	r := NewRAG(extractor, embedder, &fakeStore{}, &fakeChat{}, testConfig())

	chunks, err := r.Chunks("/data/ebook.pdf")

	require.NoError(t, err)
	assert.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].ChunkID)
	assert.Equal(t, 2, chunks[1].ChunkID)
	assert.Zero(t, embedder.calls)
}
