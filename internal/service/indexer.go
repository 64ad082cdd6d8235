package service

import (
	"context"
	"log"

	"github.com/cloo-solutions/clausecast/internal/domain"
	"golang.org/x/sync/errgroup"
)

// embedConcurrency bounds parallel embedding calls during indexing. Chunks
// have no ordering dependency; results are reassembled by chunk index.
const embedConcurrency = 4

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorStore defines the vector index operations the services need.
type VectorStore interface {
	Upsert(ctx context.Context, records []domain.ChunkRecord) error
	Query(ctx context.Context, embedding []float32, topK int, filter domain.ChunkFilter) ([]domain.ChunkMatch, error)
	DeleteByDoc(ctx context.Context, docID string) error
}

// IndexerService chunks a document, embeds each chunk, and persists the
// survivors into the vector index in a single batched upsert.
type IndexerService struct {
	embedding EmbeddingClient
	store     VectorStore
	chunkCfg  ChunkConfig
}

func NewIndexerService(embedding EmbeddingClient, store VectorStore, chunkCfg ChunkConfig) *IndexerService {
	if chunkCfg.Size <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &IndexerService{
		embedding: embedding,
		store:     store,
		chunkCfg:  chunkCfg,
	}
}

// Index splits text into chunks and upserts one vector per chunk, keyed
// "{docID}_chunk_{i}" with metadata {table, docID, chunkIndex, chunkText}.
// A chunk whose embedding fails is skipped and logged rather than aborting
// the document. Zero surviving chunks is a silent no-op. A failed upsert
// fails the whole operation; individual vectors are not retried.
func (s *IndexerService) Index(ctx context.Context, docID, table, text string) error {
	chunks, err := Chunk(text, s.chunkCfg)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	embeddings := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			embedding, err := s.embedding.GenerateEmbedding(gctx, chunk)
			if err != nil {
				log.Printf("indexer: chunk %d of doc %s failed to embed, skipping: %v", i, docID, err)
				return nil
			}
			embeddings[i] = embedding
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	records := make([]domain.ChunkRecord, 0, len(chunks))
	for i, chunk := range chunks {
		if embeddings[i] == nil {
			continue
		}
		records = append(records, domain.ChunkRecord{
			VectorID:   domain.ChunkVectorID(docID, i),
			Table:      table,
			DocID:      docID,
			ChunkIndex: i,
			Chunk:      chunk,
			Embedding:  embeddings[i],
		})
	}

	if len(records) == 0 {
		log.Printf("indexer: no chunks of doc %s survived embedding, nothing to upsert", docID)
		return nil
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		return domain.NewIndexWriteError(err)
	}

	log.Printf("indexer: upserted %d/%d chunks for doc %s", len(records), len(chunks), docID)
	return nil
}

// Remove drops every indexed chunk of a document. Removing a document that
// was never indexed is a no-op.
func (s *IndexerService) Remove(ctx context.Context, docID string) error {
	if err := s.store.DeleteByDoc(ctx, docID); err != nil {
		return domain.NewIndexWriteError(err)
	}
	return nil
}
