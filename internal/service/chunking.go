package service

import (
	"strings"

	"github.com/cloo-solutions/clausecast/internal/domain"
)

// ChunkConfig controls the word-window chunking of ingested documents.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    500,
		Overlap: 200,
	}
}

// Chunk splits text into overlapping windows of cfg.Size whitespace-delimited
// words, each window starting cfg.Size-cfg.Overlap words after the previous
// one. The final window may be shorter than cfg.Size. Empty input yields no
// chunks. Chunking is deterministic: the same text and config always produce
// the same sequence.
func Chunk(text string, cfg ChunkConfig) ([]string, error) {
	if cfg.Size <= 0 || cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		return nil, domain.ErrInvalidChunkParams
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	step := cfg.Size - cfg.Overlap
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := start + cfg.Size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks, nil
}
