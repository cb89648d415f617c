package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-rag/internal/config"
)

// Client calls the hosted chat-completion model. Each call is a single
// independent prompt; no conversation history is forwarded.
type Client struct {
	cfg *config.LLMConfig
}

func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{cfg: cfg}
}

// Call sends one prompt to the inference model and returns the generated
// text. Failures are wrapped with a stable "chat service" prefix.
func (c *Client) Call(ctx context.Context, prompt string) (string, error) {
	log.Debug().Str("model", c.cfg.InferenceModel).Int("prompt_len", len(prompt)).Msg("Generating content")

	llm, err := openai.New(
		openai.WithBaseURL(c.cfg.OpenRouterBase),
		openai.WithToken(strings.TrimPrefix(c.cfg.OpenRouterKey, "Bearer ")),
		openai.WithModel(c.cfg.InferenceModel),
	)
	if err != nil {
		return "", fmt.Errorf("chat service: %w", err)
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat service: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("chat service: empty response")
	}
	return res.Choices[0].Content, nil
}
