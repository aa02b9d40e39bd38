package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ChunkType identifies which category of fund facts a chunk carries.
type ChunkType string

const (
	TypeExpenseInformation  ChunkType = "expense_information"
	TypeNAVSIPInformation   ChunkType = "nav_sip_information"
	TypeFundCharacteristics ChunkType = "fund_characteristics"
	TypePerformanceMetrics  ChunkType = "performance_metrics"
	TypeHoldingsInformation ChunkType = "holdings_information"
	TypeRiskMetrics         ChunkType = "risk_metrics"
)

// ChunkTypes lists every known chunk type in canonical order. The order is
// load-bearing: corpus files are grouped by type, chunks enter the corpus in
// this order, and that position breaks score ties during retrieval.
var ChunkTypes = []ChunkType{
	TypeExpenseInformation,
	TypeNAVSIPInformation,
	TypeFundCharacteristics,
	TypePerformanceMetrics,
	TypeHoldingsInformation,
	TypeRiskMetrics,
}

// ParseChunkType validates a raw string against the known chunk types.
func ParseChunkType(s string) (ChunkType, error) {
	for _, t := range ChunkTypes {
		if s == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown chunk type %q", s)
}

// UnmarshalJSON rejects unknown chunk types at decode time.
func (t *ChunkType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseChunkType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Field is a single fact inside a chunk: a key and its scalar value.
type Field struct {
	Name  string
	Value string
}

// Fields is an ordered list of facts. Order follows the source JSON document
// rather than Go map iteration, so rendered context and template answers come
// out identical on every run.
type Fields []Field

// Get returns the value for name and whether it is present.
func (f Fields) Get(name string) (string, bool) {
	for _, fld := range f {
		if fld.Name == name {
			return fld.Value, true
		}
	}
	return "", false
}

// MarshalJSON renders the fields as a JSON object, preserving order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fld := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(fld.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(fld.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into ordered fields. Values must be
// scalars; numbers and booleans are kept in their literal form.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fields: expected JSON object")
	}

	out := make(Fields, 0, 4)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("fields: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("fields: expected object key")
		}

		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("fields: %w", err)
		}
		var value string
		switch v := valTok.(type) {
		case string:
			value = v
		case json.Number:
			value = v.String()
		case bool:
			value = strconv.FormatBool(v)
		case nil:
			return fmt.Errorf("fields: %q has null value", key)
		default:
			return fmt.Errorf("fields: %q has non-scalar value", key)
		}
		out = append(out, Field{Name: key, Value: value})
	}

	// Consume the closing brace
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("fields: %w", err)
	}

	*f = out
	return nil
}

// Chunk is one retrievable unit of fund facts.
type Chunk struct {
	ID        string    `json:"id"`
	FundName  string    `json:"fund_name"`
	Type      ChunkType `json:"chunk_type"`
	Data      Fields    `json:"data"`
	SourceURL string    `json:"source_url"`

	// Embedding is attached from the embeddings artifact at load time and is
	// never serialized into the corpus file.
	Embedding []float32 `json:"-"`
}

// EmbedText returns the text the encoder embeds for this chunk: fund name,
// chunk type and every field, space-joined. The corpus builder and any
// consistency check must use the same text.
func (c *Chunk) EmbedText() string {
	parts := make([]string, 0, 2+2*len(c.Data))
	parts = append(parts, c.FundName, string(c.Type))
	for _, f := range c.Data {
		parts = append(parts, f.Name, f.Value)
	}
	return strings.Join(parts, " ")
}

// EmbeddingSet is the embeddings artifact: one vector per chunk id, all of a
// single dimension, produced by a named encoder model.
type EmbeddingSet struct {
	Model     string               `json:"model"`
	Dimension int                  `json:"dimension"`
	Vectors   map[string][]float32 `json:"vectors"`
}
