package domain

import "fmt"

// ChunkRecord is one embedded window of a document, ready for upsert into
// the vector index. Records are transient: once upserted, the index row is
// the source of truth.
type ChunkRecord struct {
	VectorID   string
	Table      string
	DocID      string
	ChunkIndex int
	Chunk      string
	Embedding  []float32
}

// ChunkVectorID builds the synthetic vector id for a document chunk.
func ChunkVectorID(docID string, chunkIndex int) string {
	return fmt.Sprintf("%s_chunk_%d", docID, chunkIndex)
}

// ChunkMatch is the metadata of one retrieved chunk, in similarity-ranking
// order as returned by the vector index.
type ChunkMatch struct {
	Table      string  `json:"table"`
	DocID      string  `json:"id"`
	ChunkIndex int     `json:"chunk_index"`
	Chunk      string  `json:"chunk"`
	Score      float32 `json:"score"`
}

// ChunkFilter restricts a vector index query. DocID is required for
// document-scoped retrieval; Table is optional.
type ChunkFilter struct {
	DocID string
	Table string
}
