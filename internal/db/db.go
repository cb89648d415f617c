// Package db is the Supabase/Postgres row store. Ingestion is assumed to
// be the only writer; readers and the single writer do not race, and
// concurrent ingestion runs are not supported.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
)

// VectorSize is fixed by the embedding model; the table column and every
// query vector must match it.
const VectorSize = 768

type PdfPage struct {
	bun.BaseModel `bun:"table:pdf_pages,alias:p"`
	ID            int64           `bun:"id,pk,autoincrement"`
	PDFName       string          `bun:"pdf_name,notnull"`
	PageNumber    int             `bun:"page_number,notnull"`
	Content       string          `bun:"content,notnull"`
	Embedding     pgvector.Vector `bun:"embedding,notnull,type:vector(768)"`
}

func ConnectDB(cfg *config.StoreConfig) (*sql.DB, error) {
	dsn := cfg.SupabaseURL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.SupabaseKey))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// InitDB creates the extension, table and hybrid search function.
func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return err
	}
	if _, err := db.NewCreateTable().Model((*PdfPage)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, matchDocumentsHybridDDL)
	return err
}

// DropPages drops the table, used before a clean re-ingestion.
func DropPages(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*PdfPage)(nil)).IfExists().Exec(ctx)
	return err
}

// Store adapts the bun handle to the retrieval pipeline.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Insert writes all rows in a single multi-row statement, so a failed
// batch leaves no partial state behind.
func (s *Store) Insert(ctx context.Context, rows []models.StoredRow) error {
	if len(rows) == 0 {
		return nil
	}
	pages := make([]PdfPage, len(rows))
	for i, r := range rows {
		pages[i] = PdfPage{
			PDFName:    r.PDFName,
			PageNumber: r.PageNumber,
			Content:    r.Content,
			Embedding:  pgvector.NewVector(r.Embedding),
		}
	}
	if _, err := s.db.NewInsert().Model(&pages).Exec(ctx); err != nil {
		return fmt.Errorf("store write: %w", err)
	}
	return nil
}

type hybridRow struct {
	PDFName       string  `bun:"pdf_name"`
	PageNumber    int     `bun:"page_number"`
	Content       string  `bun:"content"`
	CombinedScore float64 `bun:"combined_score"`
}

// SearchHybrid invokes the match_documents_hybrid function. An empty
// result set means nothing cleared the threshold and is not an error.
func (s *Store) SearchHybrid(ctx context.Context, q models.HybridQuery) ([]models.QueryMatch, error) {
	var rows []hybridRow
	err := s.db.NewRaw(
		"SELECT pdf_name, page_number, content, combined_score FROM match_documents_hybrid(?, ?, ?, ?, ?)",
		pgvector.NewVector(q.Embedding), q.Text, q.Threshold, q.Count, q.SemanticWeight,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("store query: %w", err)
	}

	matches := make([]models.QueryMatch, len(rows))
	for i, r := range rows {
		matches[i] = models.QueryMatch{
			PDFName:       r.PDFName,
			PageNumber:    r.PageNumber,
			Content:       r.Content,
			CombinedScore: r.CombinedScore,
		}
	}
	return matches, nil
}
