package corpus

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
)

// Corpus is the immutable in-memory set of fund-fact chunks the server
// retrieves from. It is fully built before serving starts and never mutated
// afterwards, so request handlers read it without locking.
type Corpus struct {
	chunks    []*Chunk
	byID      map[string]*Chunk
	model     string
	dimension int
}

// New validates chunks against the embedding set, attaches each chunk's
// vector in place, and builds the corpus. Chunk order is preserved as given.
func New(chunks []*Chunk, set *EmbeddingSet) (*Corpus, error) {
	if set == nil {
		return nil, fmt.Errorf("embedding set must not be nil")
	}
	if set.Model == "" {
		return nil, fmt.Errorf("embedding set has no model name")
	}
	if set.Dimension <= 0 {
		return nil, fmt.Errorf("embedding set dimension must be greater than 0, got %d", set.Dimension)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("corpus must contain at least one chunk")
	}

	byID := make(map[string]*Chunk, len(chunks))
	for i, ch := range chunks {
		if err := validateChunk(ch); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if _, dup := byID[ch.ID]; dup {
			return nil, fmt.Errorf("chunk %d: duplicate id %q", i, ch.ID)
		}

		vec, ok := set.Vectors[ch.ID]
		if !ok {
			return nil, fmt.Errorf("chunk %d: no embedding for id %q", i, ch.ID)
		}
		if len(vec) != set.Dimension {
			return nil, fmt.Errorf("chunk %d: embedding has %d dimensions, want %d", i, len(vec), set.Dimension)
		}
		ch.Embedding = vec
		byID[ch.ID] = ch
	}

	if len(set.Vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding set has %d vectors for %d chunks", len(set.Vectors), len(chunks))
	}

	return &Corpus{
		chunks:    chunks,
		byID:      byID,
		model:     set.Model,
		dimension: set.Dimension,
	}, nil
}

// Load reads the corpus and embeddings files and builds the corpus. Any
// malformed entry fails the whole load; callers treat that as fatal.
func Load(corpusPath, embeddingsPath string) (*Corpus, error) {
	chunks, err := ReadCorpusFile(corpusPath)
	if err != nil {
		return nil, err
	}
	set, err := ReadEmbeddingsFile(embeddingsPath)
	if err != nil {
		return nil, err
	}
	return New(chunks, set)
}

func validateChunk(ch *Chunk) error {
	if ch == nil {
		return fmt.Errorf("chunk is nil")
	}
	if ch.ID == "" {
		return fmt.Errorf("chunk has empty id")
	}
	if ch.FundName == "" {
		return fmt.Errorf("chunk %s has empty fund_name", ch.ID)
	}
	if _, err := ParseChunkType(string(ch.Type)); err != nil {
		return fmt.Errorf("chunk %s: %w", ch.ID, err)
	}
	if len(ch.Data) == 0 {
		return fmt.Errorf("chunk %s has no data fields", ch.ID)
	}
	for _, f := range ch.Data {
		if f.Name == "" {
			return fmt.Errorf("chunk %s has a field with empty name", ch.ID)
		}
	}
	u, err := url.Parse(ch.SourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("chunk %s has malformed source_url %q", ch.ID, ch.SourceURL)
	}
	return nil
}

// Len returns the number of chunks.
func (c *Corpus) Len() int {
	return len(c.chunks)
}

// Model returns the name of the encoder model the corpus was embedded with.
func (c *Corpus) Model() string {
	return c.model
}

// Dimension returns the embedding width.
func (c *Corpus) Dimension() int {
	return c.dimension
}

// Chunks returns all chunks in insertion order. Callers must not modify the
// returned slice or the chunks it points to.
func (c *Corpus) Chunks() []*Chunk {
	return c.chunks
}

// ByID returns the chunk with the given id, or nil.
func (c *Corpus) ByID(id string) *Chunk {
	return c.byID[id]
}

// ByTypes returns the chunks matching any of the given types, preserving
// corpus insertion order.
func (c *Corpus) ByTypes(types ...ChunkType) []*Chunk {
	wanted := make(map[ChunkType]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	matched := make([]*Chunk, 0, len(c.chunks))
	for _, ch := range c.chunks {
		if wanted[ch.Type] {
			matched = append(matched, ch)
		}
	}
	return matched
}

// ReadCorpusFile reads a corpus artifact: a JSON object keyed by chunk type,
// each value an array of chunks. Chunks are returned grouped in canonical
// chunk-type order, file order within each group.
func ReadCorpusFile(path string) ([]*Chunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var grouped map[string][]*Chunk
	if err := json.Unmarshal(raw, &grouped); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}
	for key := range grouped {
		if _, err := ParseChunkType(key); err != nil {
			return nil, fmt.Errorf("corpus file: %w", err)
		}
	}

	var chunks []*Chunk
	for _, t := range ChunkTypes {
		for i, ch := range grouped[string(t)] {
			if ch == nil {
				return nil, fmt.Errorf("corpus file: %s[%d] is null", t, i)
			}
			if ch.Type != t {
				return nil, fmt.Errorf("corpus file: %s[%d] declares chunk_type %q", t, i, ch.Type)
			}
			chunks = append(chunks, ch)
		}
	}
	return chunks, nil
}

// ReadEmbeddingsFile reads an embeddings artifact and checks that every
// vector matches the declared dimension.
func ReadEmbeddingsFile(path string) (*EmbeddingSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read embeddings file: %w", err)
	}

	var set EmbeddingSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to parse embeddings file: %w", err)
	}
	if set.Model == "" {
		return nil, fmt.Errorf("embeddings file has no model name")
	}
	if set.Dimension <= 0 {
		return nil, fmt.Errorf("embeddings file dimension must be greater than 0, got %d", set.Dimension)
	}
	for id, vec := range set.Vectors {
		if len(vec) != set.Dimension {
			return nil, fmt.Errorf("embeddings file: vector %s has %d dimensions, want %d", id, len(vec), set.Dimension)
		}
	}
	return &set, nil
}
