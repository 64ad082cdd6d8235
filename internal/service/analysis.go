package service

import (
	"context"
	"log"
	"strings"

	"github.com/cloo-solutions/clausecast/internal/domain"
)

// bootstrapQuery is the fixed retrieval query used to pull a document's most
// analysis-relevant chunks from the index.
const bootstrapQuery = "themes issues recommendations"

// AnalysisService retrieves a document's chunks and derives the structured
// analysis, annotating cited snippets with their source chunk index.
type AnalysisService struct {
	embedding EmbeddingClient
	store     VectorStore
	extractor *AnalysisExtractor
}

func NewAnalysisService(embedding EmbeddingClient, store VectorStore, extractor *AnalysisExtractor) *AnalysisService {
	return &AnalysisService{
		embedding: embedding,
		store:     store,
		extractor: extractor,
	}
}

// Analyze queries the index for the document's top-k chunks and extracts the
// analysis from them. A document with zero indexed chunks is a not-found
// condition. Retrieved chunks are passed to the extractor in similarity
// order, not chunk order.
func (s *AnalysisService) Analyze(ctx context.Context, docID string, topK int) (*domain.AnalysisResult, error) {
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}

	embedding, err := s.embedding.GenerateEmbedding(ctx, bootstrapQuery)
	if err != nil {
		return nil, domain.NewEmbeddingError(err)
	}

	matches, err := s.store.Query(ctx, embedding, topK, domain.ChunkFilter{DocID: docID})
	if err != nil {
		return nil, domain.NewIndexQueryError(err)
	}
	if len(matches) == 0 {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeNotFound, "document "+docID+" not found", domain.ErrDocumentNotFound)
	}

	chunks := make([]string, len(matches))
	for i, m := range matches {
		chunks[i] = m.Chunk
	}

	analysis, err := s.extractor.Extract(ctx, chunks)
	if err != nil {
		return nil, err
	}

	backMapExamples(analysis, matches)

	log.Printf("analysis: generated for doc %s from %d chunks", docID, len(matches))
	return analysis, nil
}

// backMapExamples assigns each theme example the index of the first
// retrieved chunk containing its snippet, in returned-metadata order. This
// is best-effort provenance: a snippet appearing in multiple chunks maps to
// the first match, and a snippet found nowhere stays unset.
func backMapExamples(analysis *domain.AnalysisResult, matches []domain.ChunkMatch) {
	for t := range analysis.Themes {
		for e := range analysis.Themes[t].Examples {
			example := &analysis.Themes[t].Examples[e]
			if example.TextSnippet == "" {
				continue
			}
			for _, m := range matches {
				if strings.Contains(m.Chunk, example.TextSnippet) {
					idx := m.ChunkIndex
					example.ChunkIndex = &idx
					break
				}
			}
		}
	}
}
