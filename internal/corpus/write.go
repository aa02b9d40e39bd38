package corpus

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteCorpusFile writes chunks to path grouped by chunk type, the shape
// ReadCorpusFile expects. Map keys marshal sorted, so output is byte-stable
// for an unchanged input.
func WriteCorpusFile(path string, chunks []*Chunk) error {
	grouped := make(map[ChunkType][]*Chunk, len(ChunkTypes))
	for i, ch := range chunks {
		if err := validateChunk(ch); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		grouped[ch.Type] = append(grouped[ch.Type], ch)
	}

	data, err := json.MarshalIndent(grouped, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write corpus file: %w", err)
	}
	return nil
}

// WriteEmbeddingsFile writes the embedding set to path.
func WriteEmbeddingsFile(path string, set *EmbeddingSet) error {
	if set == nil {
		return fmt.Errorf("embedding set must not be nil")
	}
	if set.Model == "" {
		return fmt.Errorf("embedding set has no model name")
	}
	if set.Dimension <= 0 {
		return fmt.Errorf("embedding set dimension must be greater than 0, got %d", set.Dimension)
	}
	for id, vec := range set.Vectors {
		if len(vec) != set.Dimension {
			return fmt.Errorf("vector %s has %d dimensions, want %d", id, len(vec), set.Dimension)
		}
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal embeddings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write embeddings file: %w", err)
	}
	return nil
}
