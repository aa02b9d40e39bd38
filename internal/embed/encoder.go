package embed

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Encoder embeds text with a pretrained word-vector table. It is loaded once
// at startup and is safe for concurrent use afterwards.
type Encoder struct {
	name      string
	dimension int
	vectors   map[string][]float32
}

// LoadModel reads a word-vector file in word2vec text format: a header line
// "<count> <dimension>" followed by one "<token> <v1> ... <vdim>" row per
// token. The encoder name is the file's base name without its extension and
// is recorded in embeddings artifacts so the server can verify it loads the
// model the corpus was built with.
func LoadModel(path string) (*Encoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read model header: %w", err)
		}
		return nil, fmt.Errorf("model file is empty")
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 {
		return nil, fmt.Errorf("malformed model header %q", scanner.Text())
	}
	count, err := strconv.Atoi(header[0])
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("malformed vector count %q", header[0])
	}
	dimension, err := strconv.Atoi(header[1])
	if err != nil || dimension <= 0 {
		return nil, fmt.Errorf("malformed vector dimension %q", header[1])
	}

	vectors := make(map[string][]float32, count)
	line := 1
	for scanner.Scan() {
		line++
		row := strings.Fields(scanner.Text())
		if len(row) == 0 {
			continue
		}
		if len(row) != dimension+1 {
			return nil, fmt.Errorf("line %d: expected %d values, got %d", line, dimension, len(row)-1)
		}
		token := row[0]
		if _, ok := vectors[token]; ok {
			return nil, fmt.Errorf("line %d: duplicate token %q", line, token)
		}
		vec := make([]float32, dimension)
		for i, cell := range row[1:] {
			v, err := strconv.ParseFloat(cell, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: malformed value %q: %w", line, cell, err)
			}
			vec[i] = float32(v)
		}
		vectors[token] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	if len(vectors) != count {
		return nil, fmt.Errorf("model header declares %d vectors, file has %d", count, len(vectors))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Encoder{name: name, dimension: dimension, vectors: vectors}, nil
}

// Name returns the model identifier recorded in embeddings artifacts.
func (e *Encoder) Name() string {
	return e.name
}

// Dimension returns the width of the vectors this encoder produces.
func (e *Encoder) Dimension() int {
	return e.dimension
}

// Encode embeds text as the L2-normalized mean of its known token vectors.
// Text with no known tokens maps to the all-zero vector, whose cosine
// similarity against everything is 0, so it never clears a positive
// retrieval threshold.
func (e *Encoder) Encode(text string) []float32 {
	result := make([]float32, e.dimension)

	tokens := filterStopwords(tokenize(text))
	if len(tokens) == 0 {
		return result
	}

	var matched int
	sum := make([]float64, e.dimension)
	for _, token := range tokens {
		vec, ok := e.vectors[token]
		if !ok {
			continue
		}
		matched++
		for i, v := range vec {
			sum[i] += float64(v)
		}
	}
	if matched == 0 {
		return result
	}

	var norm float64
	for i := range sum {
		sum[i] /= float64(matched)
		norm += sum[i] * sum[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return result
	}
	for i := range sum {
		result[i] = float32(sum[i] / norm)
	}
	return result
}
