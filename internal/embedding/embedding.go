package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-rag/internal/config"
)

// NewEmbedder creates an embedder over the configured OpenAI-compatible
// endpoint. The model id comes from config and is the same for ingestion
// and query; stored vectors are only comparable to vectors from this
// exact model.
func NewEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.OpenRouterBase),
		openai.WithToken(strings.TrimPrefix(cfg.OpenRouterKey, "Bearer ")),
		openai.WithModel(cfg.EmbeddingModel),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}
	return embedder, nil
}

// Client wraps the langchaingo embedder so failures carry a stable
// "embedding service" prefix.
type Client struct {
	embedder *embeddings.EmbedderImpl
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	embedder, err := NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{embedder: embedder}, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}
	return vec, nil
}
