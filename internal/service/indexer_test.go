package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cloo-solutions/clausecast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbeddingClient returns a fixed-size embedding derived from the text,
// optionally failing for selected inputs. Safe for concurrent use.
type stubEmbeddingClient struct {
	mu      sync.Mutex
	calls   int
	failFor map[string]bool
}

func (c *stubEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.calls++
	fail := c.failFor[text]
	c.mu.Unlock()

	if fail {
		return nil, errors.New("embedding provider unavailable")
	}
	return []float32{float32(len(text)), 1, 2}, nil
}

// captureStore records upserts and serves canned query results.
type captureStore struct {
	mu        sync.Mutex
	upserted  [][]domain.ChunkRecord
	upsertErr error
	matches   []domain.ChunkMatch
	queryErr  error
	deleted   []string
	deleteErr error
	lastTopK  int
	lastQuery domain.ChunkFilter
}

func (s *captureStore) Upsert(ctx context.Context, records []domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, records)
	return nil
}

func (s *captureStore) DeleteByDoc(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, docID)
	return nil
}

func (s *captureStore) Query(ctx context.Context, embedding []float32, topK int, filter domain.ChunkFilter) ([]domain.ChunkMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTopK = topK
	s.lastQuery = filter
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.matches, nil
}

func TestIndex_UpsertsOneVectorPerChunk(t *testing.T) {
	embedder := &stubEmbeddingClient{}
	store := &captureStore{}
	indexer := NewIndexerService(embedder, store, ChunkConfig{Size: 10, Overlap: 2})

	err := indexer.Index(context.Background(), "doc-1", "documents", wordsText(25))
	require.NoError(t, err)

	require.Len(t, store.upserted, 1)
	records := store.upserted[0]
	// 25 words, window 10, step 8: starts at 0, 8, 16, 24.
	require.Len(t, records, 4)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("doc-1_chunk_%d", i), rec.VectorID)
		assert.Equal(t, "documents", rec.Table)
		assert.Equal(t, "doc-1", rec.DocID)
		assert.Equal(t, i, rec.ChunkIndex)
		assert.NotEmpty(t, rec.Chunk)
		assert.NotEmpty(t, rec.Embedding)
	}
}

func TestIndex_SkipsFailedChunks(t *testing.T) {
	text := wordsText(25)
	chunks, err := Chunk(text, ChunkConfig{Size: 10, Overlap: 2})
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	embedder := &stubEmbeddingClient{failFor: map[string]bool{chunks[1]: true}}
	store := &captureStore{}
	indexer := NewIndexerService(embedder, store, ChunkConfig{Size: 10, Overlap: 2})

	err = indexer.Index(context.Background(), "doc-1", "documents", text)
	require.NoError(t, err)

	require.Len(t, store.upserted, 1)
	records := store.upserted[0]
	require.Len(t, records, 3)

	// Surviving records keep their original chunk indexes.
	indexes := make([]int, 0, len(records))
	for _, rec := range records {
		indexes = append(indexes, rec.ChunkIndex)
		assert.Equal(t, domain.ChunkVectorID("doc-1", rec.ChunkIndex), rec.VectorID)
	}
	assert.ElementsMatch(t, []int{0, 2, 3}, indexes)
}

func TestIndex_AllChunksFailIsNoOp(t *testing.T) {
	embedder := &stubEmbeddingClient{failFor: map[string]bool{}}
	text := wordsText(25)
	chunks, err := Chunk(text, ChunkConfig{Size: 10, Overlap: 2})
	require.NoError(t, err)
	for _, c := range chunks {
		embedder.failFor[c] = true
	}

	store := &captureStore{}
	indexer := NewIndexerService(embedder, store, ChunkConfig{Size: 10, Overlap: 2})

	err = indexer.Index(context.Background(), "doc-1", "documents", text)
	require.NoError(t, err)
	assert.Empty(t, store.upserted)
}

func TestIndex_EmptyTextIsNoOp(t *testing.T) {
	embedder := &stubEmbeddingClient{}
	store := &captureStore{}
	indexer := NewIndexerService(embedder, store, DefaultChunkConfig())

	err := indexer.Index(context.Background(), "doc-1", "documents", "   ")
	require.NoError(t, err)
	assert.Empty(t, store.upserted)
	assert.Zero(t, embedder.calls)
}

func TestIndex_UpsertFailure(t *testing.T) {
	embedder := &stubEmbeddingClient{}
	store := &captureStore{upsertErr: errors.New("connection reset")}
	indexer := NewIndexerService(embedder, store, ChunkConfig{Size: 10, Overlap: 2})

	err := indexer.Index(context.Background(), "doc-1", "documents", wordsText(25))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeIndexWrite, domainErr.Code)
}

func TestRemove_DeletesDocumentChunks(t *testing.T) {
	store := &captureStore{}
	indexer := NewIndexerService(&stubEmbeddingClient{}, store, DefaultChunkConfig())

	require.NoError(t, indexer.Remove(context.Background(), "doc-1"))
	assert.Equal(t, []string{"doc-1"}, store.deleted)
}

func TestRemove_StoreFailure(t *testing.T) {
	store := &captureStore{deleteErr: errors.New("connection reset")}
	indexer := NewIndexerService(&stubEmbeddingClient{}, store, DefaultChunkConfig())

	err := indexer.Remove(context.Background(), "doc-1")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeIndexWrite, domainErr.Code)
}

func TestIndex_InvalidChunkConfig(t *testing.T) {
	indexer := &IndexerService{
		embedding: &stubEmbeddingClient{},
		store:     &captureStore{},
		chunkCfg:  ChunkConfig{Size: 10, Overlap: 10},
	}

	err := indexer.Index(context.Background(), "doc-1", "documents", wordsText(25))
	assert.ErrorIs(t, err, domain.ErrInvalidChunkParams)
}
