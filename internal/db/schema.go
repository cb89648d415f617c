package db

// matchDocumentsHybridDDL defines the hybrid search function. The
// semantic score is cosine similarity, the lexical score a ts_rank_cd
// clamped to [0,1]; both are blended with semantic_weight and rows below
// match_threshold are dropped.
const matchDocumentsHybridDDL = `
CREATE OR REPLACE FUNCTION match_documents_hybrid(
	query_embedding vector(768),
	query_text text,
	match_threshold float,
	match_count int,
	semantic_weight float
)
RETURNS TABLE (
	id bigint,
	pdf_name text,
	page_number int,
	content text,
	combined_score float
)
LANGUAGE sql STABLE AS $$
	WITH scored AS (
		SELECT
			p.id,
			p.pdf_name,
			p.page_number,
			p.content,
			1 - (p.embedding <=> query_embedding) AS semantic_score,
			LEAST(ts_rank_cd(to_tsvector('english', p.content), plainto_tsquery('english', query_text)), 1.0) AS lexical_score
		FROM pdf_pages p
	)
	SELECT
		id,
		pdf_name,
		page_number,
		content,
		semantic_weight * semantic_score + (1 - semantic_weight) * lexical_score AS combined_score
	FROM scored
	WHERE semantic_weight * semantic_score + (1 - semantic_weight) * lexical_score > match_threshold
	ORDER BY combined_score DESC, id
	LIMIT match_count;
$$;
`
