// Package rag orchestrates the ingestion and query pipelines. Both run
// fully synchronously: ingestion is a one-shot offline batch and each
// query turn completes before the next begins.
package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/config"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/models"
	"pdf-rag/internal/splitter"
)

// retryDelay is the base backoff between attempts against the hosted
// services; attempts grow linearly from it.
const retryDelay = 500 * time.Millisecond

// Extractor produces ordered per-page text for a document.
type Extractor interface {
	Extract(path string) ([]models.PageText, error)
}

// Embedder turns text into a fixed-length vector. The same model must
// serve ingestion and query.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store persists embedded chunks and answers hybrid similarity queries.
type Store interface {
	Insert(ctx context.Context, rows []models.StoredRow) error
	SearchHybrid(ctx context.Context, q models.HybridQuery) ([]models.QueryMatch, error)
}

// ChatModel generates an answer for a single grounding prompt.
type ChatModel interface {
	Call(ctx context.Context, prompt string) (string, error)
}

type RAG struct {
	extractor Extractor
	embedder  Embedder
	store     Store
	chat      ChatModel
	cfg       *config.Config
}

func NewRAG(extractor Extractor, embedder Embedder, store Store, chat ChatModel, cfg *config.Config) *RAG {
	return &RAG{extractor: extractor, embedder: embedder, store: store, chat: chat, cfg: cfg}
}

// Ingest extracts, chunks, embeds and stores one document. Pages without
// text are skipped. Returns the number of rows written.
func (r *RAG) Ingest(ctx context.Context, path string) (int, error) {
	pages, err := r.extractor.Extract(path)
	if err != nil {
		return 0, err
	}

	rows, err := r.buildRows(ctx, pages)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		log.Info().Str("file", filepath.Base(path)).Msg("No chunks generated from content")
		return 0, nil
	}

	log.Info().Int("chunks", len(rows)).Msg("Uploading chunks to store")
	err = helper.Retry(ctx, r.cfg.RAG.MaxRetries, retryDelay, func() error {
		return r.store.Insert(ctx, rows)
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Chunks splits the document at path without embedding or storing
// anything; the dry-run path of the ingestion driver.
func (r *RAG) Chunks(path string) ([]models.Chunk, error) {
	pages, err := r.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	var chunks []models.Chunk
	for _, page := range pages {
		for i, content := range r.splitPage(page.Text) {
			chunks = append(chunks, models.Chunk{Content: content, PageNumber: page.PageNumber, ChunkID: i + 1})
		}
	}
	return chunks, nil
}

func (r *RAG) splitPage(text string) []string {
	return splitter.Split(text, splitter.Config{
		ChunkSize:  r.cfg.RAG.ChunkSize,
		Overlap:    r.cfg.RAG.ChunkOverlap,
		Separators: splitter.DefaultSeparators,
	})
}

func (r *RAG) buildRows(ctx context.Context, pages []models.PageText) ([]models.StoredRow, error) {
	var rows []models.StoredRow
	for _, page := range pages {
		chunks := r.splitPage(page.Text)
		if len(chunks) == 0 {
			log.Debug().Int("page", page.PageNumber).Msg("Skipping page without text")
			continue
		}
		for _, chunk := range chunks {
			var vec []float32
			err := helper.Retry(ctx, r.cfg.RAG.MaxRetries, retryDelay, func() error {
				var embErr error
				vec, embErr = r.embedder.EmbedQuery(ctx, chunk)
				return embErr
			})
			if err != nil {
				return nil, err
			}
			rows = append(rows, models.StoredRow{
				PDFName:    page.PDFName,
				PageNumber: page.PageNumber,
				Content:    chunk,
				Embedding:  vec,
			})
		}
	}
	return rows, nil
}

// Retrieve embeds the question and returns the store's hybrid matches in
// descending score order.
func (r *RAG) Retrieve(ctx context.Context, question string) ([]models.QueryMatch, error) {
	var vec []float32
	err := helper.Retry(ctx, r.cfg.RAG.MaxRetries, retryDelay, func() error {
		var embErr error
		vec, embErr = r.embedder.EmbedQuery(ctx, question)
		return embErr
	})
	if err != nil {
		return nil, err
	}

	return r.store.SearchHybrid(ctx, models.HybridQuery{
		Embedding:      vec,
		Text:           question,
		Threshold:      r.cfg.RAG.MatchThreshold,
		Count:          r.cfg.RAG.MatchCount,
		SemanticWeight: r.cfg.RAG.SemanticWeight,
	})
}

// Answer assembles the grounding prompt from the matches and calls the
// chat model once, with no conversation history.
func (r *RAG) Answer(ctx context.Context, question string, matches []models.QueryMatch) (string, error) {
	prompt := BuildPrompt(question, matches)

	var answer string
	err := helper.Retry(ctx, r.cfg.RAG.MaxRetries, retryDelay, func() error {
		var chatErr error
		answer, chatErr = r.chat.Call(ctx, prompt)
		return chatErr
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

// Query runs one full retrieve-and-answer cycle. When nothing clears the
// match threshold the fixed no-matches message is returned and the chat
// model is not called, so the model cannot hallucinate over an empty
// context.
func (r *RAG) Query(ctx context.Context, question string) (*models.PromptResponse, error) {
	matches, err := r.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &models.PromptResponse{Query: question, Content: models.NoMatchesMessage}, nil
	}

	answer, err := r.Answer(ctx, question, matches)
	if err != nil {
		return nil, err
	}
	return &models.PromptResponse{
		Query:   question,
		Source:  FormatSources(matches),
		Content: answer,
	}, nil
}

// BuildPrompt renders the deterministic grounding prompt: the fixed
// instruction, one labeled block per match, and the literal question.
func BuildPrompt(question string, matches []models.QueryMatch) string {
	blocks := make([]string, 0, len(matches))
	for i, m := range matches {
		blocks = append(blocks, fmt.Sprintf(models.SourceBlockFormat, i+1, m.PDFName, m.PageNumber, m.CombinedScore, m.Content))
	}
	context := strings.Join(blocks, models.ContextSeparator)
	return fmt.Sprintf(models.GroundingPromptTemplate, context, question)
}

// FormatSources is the human-readable source list shown next to the
// answer, one line per match with its 1-based rank.
func FormatSources(matches []models.QueryMatch) string {
	lines := make([]string, 0, len(matches))
	for i, m := range matches {
		lines = append(lines, fmt.Sprintf("%d. %s - Page %d (score %.3f)", i+1, m.PDFName, m.PageNumber, m.CombinedScore))
	}
	return strings.Join(lines, "\n")
}

// RenderAnswer converts a query result into the text shown to the user.
// Errors are surfaced as an "Error: ..." string here, at the
// presentation boundary only, so the interactive surface never crashes
// on a failed model or store call.
func RenderAnswer(resp *models.PromptResponse, err error) string {
	if err != nil {
		return "Error: " + err.Error()
	}
	return resp.Content
}
