// Package chromemdb is a local on-disk fallback for the Supabase store,
// backed by a chromem-go collection. The hybrid score is computed client
// side since chromem only ranks by vector similarity. Same single-writer
// assumption as the Postgres store.
package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"

	"pdf-rag/internal/helper"
	"pdf-rag/internal/models"
)

const compress = false

// Store wraps a chromem collection holding one document per chunk.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewStore opens (or creates) a persistent collection at path. With
// inMemory set, nothing touches the disk; used by tests.
func NewStore(path, collectionName string, inMemory bool) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}

	return &Store{db: db, collection: collection}, nil
}

// Insert adds one chromem document per row, carrying the page metadata
// needed to rebuild QueryMatch values at search time.
func (s *Store) Insert(ctx context.Context, rows []models.StoredRow) error {
	if len(rows) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(rows))
	for _, row := range rows {
		id, err := helper.GenerateUUID()
		if err != nil {
			return fmt.Errorf("store write: %w", err)
		}
		docs = append(docs, chromem.Document{
			ID:      id,
			Content: row.Content,
			Metadata: map[string]string{
				"pdf_name":    row.PDFName,
				"page_number": strconv.Itoa(row.PageNumber),
			},
			Embedding: row.Embedding,
		})
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("store write: %w", err)
	}
	return nil
}

// SearchHybrid ranks by vector similarity in chromem, then re-scores
// with the blended semantic+lexical score and applies the threshold and
// count. Empty result means nothing cleared the threshold.
func (s *Store) SearchHybrid(ctx context.Context, q models.HybridQuery) ([]models.QueryMatch, error) {
	total := s.collection.Count()
	if total == 0 {
		return nil, nil
	}

	// Over-fetch so lexical re-scoring can promote rows beyond the
	// top vector hits.
	n := q.Count * 4
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}

	results, err := s.collection.QueryEmbedding(ctx, q.Embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("store query: %w", err)
	}

	queryTokens := tokenSet(q.Text)
	var matches []models.QueryMatch
	for _, r := range results {
		score := combineScore(q.SemanticWeight, float64(r.Similarity), lexicalScore(queryTokens, r.Content))
		if score <= q.Threshold {
			continue
		}
		page, _ := strconv.Atoi(r.Metadata["page_number"])
		matches = append(matches, models.QueryMatch{
			PDFName:       r.Metadata["pdf_name"],
			PageNumber:    page,
			Content:       r.Content,
			CombinedScore: score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CombinedScore > matches[j].CombinedScore
	})
	if len(matches) > q.Count && q.Count > 0 {
		matches = matches[:q.Count]
	}
	return matches, nil
}

// combineScore blends the two normalized sub-scores; weight is the
// semantic share in [0,1].
func combineScore(weight, semantic, lexical float64) float64 {
	return weight*semantic + (1-weight)*lexical
}
