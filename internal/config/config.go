package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pdf-rag/internal/models"
)

// StoreConfig selects and configures the row store. Type "supabase" uses
// the Postgres backend, "local" a chromem collection on disk.
type StoreConfig struct {
	Type        string `yaml:"type"`
	SupabaseURL string `yaml:"supabase_url"`
	SupabaseKey string `yaml:"supabase_key"`
	LocalPath   string `yaml:"local_path"`
	Collection  string `yaml:"collection"`
	Debug       bool   `yaml:"debug"`
}

// LLMConfig configures the hosted embedding and chat models behind one
// OpenAI-compatible endpoint. EmbeddingModel is shared by ingestion and
// query; changing it invalidates every stored vector.
type LLMConfig struct {
	OpenRouterBase string `yaml:"openrouter_base"`
	OpenRouterKey  string `yaml:"openrouter_key"`
	EmbeddingModel string `yaml:"embedding_model"`
	InferenceModel string `yaml:"inference_model"`
}

// RAGConfig holds the chunking and retrieval parameters.
type RAGConfig struct {
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	MatchThreshold float64 `yaml:"match_threshold"`
	MatchCount     int     `yaml:"match_count"`
	SemanticWeight float64 `yaml:"semantic_weight"`
	MaxRetries     int     `yaml:"max_retries"`
}

type Config struct {
	DataDir string      `yaml:"data_dir"`
	Store   StoreConfig `yaml:"store"`
	LLM     LLMConfig   `yaml:"llm"`
	RAG     RAGConfig   `yaml:"rag"`
}

// LoadConfig reads the YAML config file and overlays secrets from the
// environment (a .env file is honored when present).
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		c.Store.SupabaseURL = v
	}
	if v := os.Getenv("SUPABASE_KEY"); v != "" {
		c.Store.SupabaseKey = v
	}
	if v := os.Getenv("OPENROUTER_KEY"); v != "" {
		c.LLM.OpenRouterKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Store.Type == "" {
		c.Store.Type = "supabase"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "pdf_pages"
	}
	if c.Store.LocalPath == "" {
		c.Store.LocalPath = "./chromemdb"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = 1000
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = 150
	}
	if c.RAG.MatchThreshold == 0 {
		c.RAG.MatchThreshold = 0.3
	}
	if c.RAG.MatchCount == 0 {
		c.RAG.MatchCount = 5
	}
	if c.RAG.SemanticWeight == 0 {
		c.RAG.SemanticWeight = 0.7
	}
	if c.RAG.MaxRetries == 0 {
		c.RAG.MaxRetries = 3
	}
}

// ValidateStore checks that the selected store backend has credentials
// before any network call is attempted.
func (c *Config) ValidateStore() error {
	if c.Store.Type != "supabase" {
		return nil
	}
	if c.Store.SupabaseURL == "" || c.Store.SupabaseKey == "" {
		return fmt.Errorf("%w: supabase_url and supabase_key must be set in config or environment", models.ErrMissingCredentials)
	}
	return nil
}
