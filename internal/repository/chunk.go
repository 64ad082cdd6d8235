package repository

import (
	"context"

	"github.com/cloo-solutions/clausecast/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// ChunkRepository persists document chunks with their embeddings and serves
// cosine-similarity queries over them. It is the concrete vector index
// adapter behind the service layer's VectorStore interface.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// Upsert writes all records in one batch, replacing rows with the same
// vector id. Partial batches are not retried; the caller treats any failure
// as a whole-operation failure.
func (r *ChunkRepository) Upsert(ctx context.Context, records []domain.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO document_chunks (vector_id, doc_table, doc_id, chunk_index, chunk, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (vector_id) DO UPDATE SET
				doc_table = EXCLUDED.doc_table,
				doc_id = EXCLUDED.doc_id,
				chunk_index = EXCLUDED.chunk_index,
				chunk = EXCLUDED.chunk,
				embedding = EXCLUDED.embedding`,
			rec.VectorID,
			rec.Table,
			rec.DocID,
			rec.ChunkIndex,
			rec.Chunk,
			pgvector.NewVector(rec.Embedding),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// Query returns up to topK chunk matches for the given embedding, most
// similar first. The score is cosine similarity.
func (r *ChunkRepository) Query(ctx context.Context, embedding []float32, topK int, filter domain.ChunkFilter) ([]domain.ChunkMatch, error) {
	vec := pgvector.NewVector(embedding)

	var rows pgx.Rows
	var err error
	if filter.Table != "" {
		rows, err = r.db.Query(ctx,
			`SELECT doc_table, doc_id, chunk_index, chunk, 1 - (embedding <=> $1) AS score
			 FROM document_chunks
			 WHERE doc_id = $2 AND doc_table = $3
			 ORDER BY embedding <=> $1
			 LIMIT $4`,
			vec, filter.DocID, filter.Table, topK,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT doc_table, doc_id, chunk_index, chunk, 1 - (embedding <=> $1) AS score
			 FROM document_chunks
			 WHERE doc_id = $2
			 ORDER BY embedding <=> $1
			 LIMIT $3`,
			vec, filter.DocID, topK,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.ChunkMatch
	for rows.Next() {
		var m domain.ChunkMatch
		if err := rows.Scan(&m.Table, &m.DocID, &m.ChunkIndex, &m.Chunk, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// DeleteByDoc removes all chunks of a document.
func (r *ChunkRepository) DeleteByDoc(ctx context.Context, docID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE doc_id = $1`, docID)
	return err
}
