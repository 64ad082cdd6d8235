package storage

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/cloo-solutions/clausecast/internal/domain"
)

// MemoryVectorStore keeps chunk records in process memory and answers
// similarity queries by brute-force cosine scan. It backs the one-shot CLI
// pipeline where no database is available.
type MemoryVectorStore struct {
	mu      sync.RWMutex
	records map[string]domain.ChunkRecord
}

func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{records: make(map[string]domain.ChunkRecord)}
}

func (s *MemoryVectorStore) Upsert(ctx context.Context, records []domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records[rec.VectorID] = rec
	}
	return nil
}

func (s *MemoryVectorStore) Query(ctx context.Context, embedding []float32, topK int, filter domain.ChunkFilter) ([]domain.ChunkMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []domain.ChunkMatch
	for _, rec := range s.records {
		if filter.DocID != "" && rec.DocID != filter.DocID {
			continue
		}
		if filter.Table != "" && rec.Table != filter.Table {
			continue
		}
		matches = append(matches, domain.ChunkMatch{
			Table:      rec.Table,
			DocID:      rec.DocID,
			ChunkIndex: rec.ChunkIndex,
			Chunk:      rec.Chunk,
			Score:      cosineSimilarity(embedding, rec.Embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *MemoryVectorStore) DeleteByDoc(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if rec.DocID == docID {
			delete(s.records, id)
		}
	}
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
