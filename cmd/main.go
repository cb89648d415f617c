package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/config"
	"pdf-rag/internal/db"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/extractor"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/rag"
	"pdf-rag/internal/tui"
)

const (
	configFilePath = "./configs/config.yaml"
	demoQuery      = "What is agentic AI?"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to the document file to ingest")
	query := flag.String("query", "", "Question to answer from the ingested documents")
	chat := flag.Bool("chat", false, "Start the interactive chat interface")
	dryRun := flag.Bool("dry-run", false, "Chunk the document and print the result without embedding or storing")
	flag.Parse()

	ctx := context.Background()

	if *filePath != "" {
		ingestFile(ctx, *filePath, *dryRun)
		return
	}

	if *chat {
		runChat(ctx)
		return
	}

	q := *query
	if q == "" {
		// Standalone driver behavior: run the demonstration query.
		q = demoQuery
	}
	runQuery(ctx, q)
}

func ingestFile(ctx context.Context, filePath string, dryRun bool) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(cfg.DataDir, filePath)
	}

	if dryRun {
		r := rag.NewRAG(extractor.New(), nil, nil, nil, cfg)
		chunks, err := r.Chunks(filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error chunking document")
		}
		helper.PrettyPrint(chunks)
		return
	}

	// Credentials are checked before any network call.
	if err := cfg.ValidateStore(); err != nil {
		fmt.Println("Error: " + err.Error())
		return
	}

	r, cleanup, err := buildRAG(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building pipeline")
	}
	defer cleanup()

	n, err := r.Ingest(ctx, filePath)
	if err != nil {
		log.Error().Err(err).Msg("Error ingesting document")
		return
	}
	log.Info().Int("chunks", n).Str("file", filepath.Base(filePath)).Msg("Success! Data uploaded")
}

func runQuery(ctx context.Context, query string) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	if err := cfg.ValidateStore(); err != nil {
		fmt.Println("Error: " + err.Error())
		return
	}

	r, cleanup, err := buildRAG(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building pipeline")
	}
	defer cleanup()

	fmt.Printf("Querying: %s\n\n", query)

	resp, err := r.Query(ctx, query)
	answer := rag.RenderAnswer(resp, err)

	if resp != nil && resp.Source != "" {
		fmt.Printf("Sources:\n%s\n\n", resp.Source)
	}
	fmt.Println("Answer:")
	fmt.Println(answer)
}

func runChat(ctx context.Context) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	if err := cfg.ValidateStore(); err != nil {
		fmt.Println("Error: " + err.Error())
		return
	}

	r, cleanup, err := buildRAG(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building pipeline")
	}
	defer cleanup()

	// The TUI writes to the terminal; keep log noise out of it.
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)

	if _, err := tea.NewProgram(tui.New(r), tea.WithAltScreen()).Run(); err != nil {
		log.Fatal().Err(err).Msg("Error running chat interface")
	}
}

// buildRAG wires the pipeline with the configured store backend and
// returns a cleanup func for whatever connections were opened.
func buildRAG(ctx context.Context, cfg *config.Config) (*rag.RAG, func(), error) {
	embedder, err := embedding.NewClient(&cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	chatModel := llmservice.NewClient(&cfg.LLM)

	var store rag.Store
	cleanup := func() {}

	switch cfg.Store.Type {
	case "supabase":
		sqldb, err := db.ConnectDB(&cfg.Store)
		if err != nil {
			return nil, nil, err
		}
		bunDB := db.NewDB(sqldb, cfg.Store.Debug)
		if err := db.InitDB(ctx, bunDB); err != nil {
			bunDB.Close()
			return nil, nil, err
		}
		store = db.NewStore(bunDB)
		cleanup = func() { bunDB.Close() }
	case "local":
		local, err := chromemdb.NewStore(cfg.Store.LocalPath, cfg.Store.Collection, false)
		if err != nil {
			return nil, nil, err
		}
		store = local
	default:
		return nil, nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}

	return rag.NewRAG(extractor.New(), embedder, store, chatModel, cfg), cleanup, nil
}
