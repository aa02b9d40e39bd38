package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"fundfaq-ai/internal/contextutil"
	"fundfaq-ai/internal/corpus"
	"fundfaq-ai/internal/storage"
)

// Encoder turns chunk text into a fixed-dimension vector. *embed.Encoder
// satisfies it; tests substitute a static one.
type Encoder interface {
	Encode(text string) []float32
	Name() string
	Dimension() int
}

// category maps one chunk type to the scraped data types it gathers.
type category struct {
	chunkType corpus.ChunkType
	dataTypes []string
}

// chunkCategories drives the grouping of a scheme's data points into chunks.
// Slice order matches corpus.ChunkTypes; data-type order fixes field order
// inside a chunk.
var chunkCategories = []category{
	{corpus.TypeExpenseInformation, []string{"expense_ratio", "stamp_duty"}},
	{corpus.TypeNAVSIPInformation, []string{"nav", "nav_date", "min_sip", "exit_load"}},
	{corpus.TypeFundCharacteristics, []string{"fund_size", "fund_manager", "lock_in", "scheme_type", "sub_category", "is_elss", "category_label"}},
	{corpus.TypePerformanceMetrics, []string{"fund_returns", "category_averages", "rank", "pe_ratio", "pb_ratio", "annualised_returns"}},
	{corpus.TypeHoldingsInformation, []string{"top_holdings"}},
	{corpus.TypeRiskMetrics, []string{"riskometer", "risk_metrics", "benchmark"}},
}

// valueValidators rejects scraped values that are out of range for their data
// type. Data types without an entry pass through unchecked.
var valueValidators = map[string]func(string) bool{
	"expense_ratio": storage.ValidPercentage,
	"stamp_duty":    storage.ValidPercentage,
	"pe_ratio":      storage.ValidRatio,
	"pb_ratio":      storage.ValidRatio,
	"fund_size":     storage.ValidAmount,
	"min_sip":       storage.ValidAmount,
}

// Pipeline builds the retrieval corpus from scraped scheme records: it groups
// each scheme's data points by category, validates and flattens the values
// into ordered scalar fields, and embeds one vector per chunk.
type Pipeline struct {
	schemes storage.SchemeStore
	encoder Encoder
}

// NewPipeline creates a corpus build pipeline.
func NewPipeline(schemes storage.SchemeStore, encoder Encoder) *Pipeline {
	return &Pipeline{
		schemes: schemes,
		encoder: encoder,
	}
}

// Build produces the corpus chunks and their embedding set from every scheme
// in storage. Schemes with an invalid name or source URL are skipped with a
// warning rather than failing the build. Chunks come back grouped in
// canonical chunk-type order, scheme name order within each group, which is
// the exact order corpus.Load reproduces from the written artifacts.
func (p *Pipeline) Build(ctx context.Context) ([]*corpus.Chunk, *corpus.EmbeddingSet, error) {
	logger := contextutil.LoggerFromContext(ctx)

	schemes, err := p.schemes.ListSchemes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list schemes: %w", err)
	}

	logger.InfoContext(ctx, "starting corpus build", "schemes", len(schemes))

	grouped := make(map[corpus.ChunkType][]*corpus.Chunk, len(corpus.ChunkTypes))
	var skipped int

	for i := range schemes {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		scheme := &schemes[i]
		if !storage.ValidFundName(scheme.Name) {
			skipped++
			logger.WarnContext(ctx, "skipping scheme with invalid name", "name", scheme.Name, "url", scheme.SourceURL)
			continue
		}
		if !storage.ValidSourceURL(scheme.SourceURL) {
			skipped++
			logger.WarnContext(ctx, "skipping scheme with invalid source url", "name", scheme.Name, "url", scheme.SourceURL)
			continue
		}

		schemeChunks, err := p.buildScheme(ctx, scheme)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build chunks for %s: %w", scheme.Name, err)
		}
		if len(schemeChunks) == 0 {
			logger.WarnContext(ctx, "no chunks generated", "fund", scheme.Name)
			continue
		}

		logger.DebugContext(ctx, "scheme chunked", "fund", scheme.Name, "chunks", len(schemeChunks))
		for _, ch := range schemeChunks {
			grouped[ch.Type] = append(grouped[ch.Type], ch)
		}
	}

	var chunks []*corpus.Chunk
	for _, t := range corpus.ChunkTypes {
		chunks = append(chunks, grouped[t]...)
	}
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("no chunks produced from %d schemes", len(schemes))
	}

	vectors := make(map[string][]float32, len(chunks))
	for _, ch := range chunks {
		vectors[ch.ID] = p.encoder.Encode(ch.EmbedText())
	}
	set := &corpus.EmbeddingSet{
		Model:     p.encoder.Name(),
		Dimension: p.encoder.Dimension(),
		Vectors:   vectors,
	}

	logger.InfoContext(ctx, "corpus build completed",
		"schemes", len(schemes),
		"skipped_schemes", skipped,
		"chunks", len(chunks))

	return chunks, set, nil
}

// buildScheme assembles one scheme's chunks: one per category that ends up
// with at least one field after validation and flattening.
func (p *Pipeline) buildScheme(ctx context.Context, scheme *storage.Scheme) ([]*corpus.Chunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	points, err := p.schemes.DataByScheme(ctx, scheme.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load data points: %w", err)
	}
	byType := make(map[string]string, len(points))
	for _, pt := range points {
		byType[pt.DataType] = pt.Value
	}

	var chunks []*corpus.Chunk
	for _, cat := range chunkCategories {
		fields := make(corpus.Fields, 0, len(cat.dataTypes))
		for _, dataType := range cat.dataTypes {
			raw, ok := byType[dataType]
			if !ok {
				continue
			}
			if validate, ok := valueValidators[dataType]; ok && !validate(raw) {
				logger.WarnContext(ctx, "skipping invalid value", "fund", scheme.Name, "data_type", dataType, "value", raw)
				continue
			}
			for _, fld := range p.flattenValue(ctx, scheme.Name, dataType, raw) {
				if _, dup := fields.Get(fld.Name); dup {
					logger.WarnContext(ctx, "skipping colliding field", "fund", scheme.Name, "data_type", dataType, "field", fld.Name)
					continue
				}
				fields = append(fields, fld)
			}
		}
		if len(fields) == 0 {
			continue
		}

		chunks = append(chunks, &corpus.Chunk{
			ID:        chunkID(scheme.SourceURL, cat.chunkType),
			FundName:  scheme.Name,
			Type:      cat.chunkType,
			Data:      fields,
			SourceURL: scheme.SourceURL,
		})
	}
	return chunks, nil
}

// flattenValue turns one stored data-point value into ordered scalar fields.
// Values that do not parse as JSON are the scraper's raw scalars and become a
// single field under the data-type key. JSON objects promote their scalar
// members under their own keys in document order; arrays collapse into a
// single literal.
func (p *Pipeline) flattenValue(ctx context.Context, fundName, dataType, raw string) corpus.Fields {
	trimmed := strings.TrimSpace(raw)
	if !json.Valid([]byte(trimmed)) {
		if trimmed == "" {
			return nil
		}
		return corpus.Fields{{Name: dataType, Value: trimmed}}
	}

	switch {
	case strings.HasPrefix(trimmed, "{"):
		return p.flattenObject(ctx, fundName, dataType, trimmed)
	case strings.HasPrefix(trimmed, "["):
		return p.flattenList(ctx, fundName, dataType, trimmed)
	default:
		value, ok := decodeScalar(json.RawMessage(trimmed))
		if !ok || value == "" {
			return nil
		}
		return corpus.Fields{{Name: dataType, Value: value}}
	}
}

// flattenObject promotes an object's scalar members to fields in document
// order. Nested members are skipped with a warning; nulls and empty strings
// are dropped.
func (p *Pipeline) flattenObject(ctx context.Context, fundName, dataType, raw string) corpus.Fields {
	logger := contextutil.LoggerFromContext(ctx)

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil
	}

	fields := make(corpus.Fields, 0, 4)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fields
		}
		key, ok := keyTok.(string)
		if !ok {
			return fields
		}
		var member json.RawMessage
		if err := dec.Decode(&member); err != nil {
			return fields
		}

		if isComposite(member) {
			logger.WarnContext(ctx, "skipping nested member", "fund", fundName, "data_type", dataType, "member", key)
			continue
		}
		value, ok := decodeScalar(member)
		if !ok || value == "" {
			continue
		}
		fields = append(fields, corpus.Field{Name: key, Value: value})
	}
	return fields
}

// flattenList collapses an array value into a single field under the
// data-type key. Arrays of scalars join with commas; arrays of holding
// objects render as "HDFC Bank Ltd (9.12%), ICICI Bank Ltd (8.45%)".
func (p *Pipeline) flattenList(ctx context.Context, fundName, dataType, raw string) corpus.Fields {
	logger := contextutil.LoggerFromContext(ctx)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	if isComposite(items[0]) {
		return p.flattenHoldings(ctx, fundName, dataType, items)
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		value, ok := decodeScalar(item)
		if !ok {
			logger.WarnContext(ctx, "skipping array with non-scalar items", "fund", fundName, "data_type", dataType)
			return nil
		}
		if value == "" {
			continue
		}
		parts = append(parts, value)
	}
	if len(parts) == 0 {
		return nil
	}
	return corpus.Fields{{Name: dataType, Value: strings.Join(parts, ", ")}}
}

// flattenHoldings renders an array of {stock, percentage} objects as one
// literal. Percentages keep their literal form and gain a % suffix when the
// scraper stored a bare number.
func (p *Pipeline) flattenHoldings(ctx context.Context, fundName, dataType string, items []json.RawMessage) corpus.Fields {
	logger := contextutil.LoggerFromContext(ctx)

	parts := make([]string, 0, len(items))
	for _, item := range items {
		var holding struct {
			Stock      string          `json:"stock"`
			Percentage json.RawMessage `json:"percentage"`
		}
		if err := json.Unmarshal(item, &holding); err != nil || holding.Stock == "" {
			logger.WarnContext(ctx, "skipping array without stock entries", "fund", fundName, "data_type", dataType)
			return nil
		}
		pct, _ := decodeScalar(holding.Percentage)
		if pct == "" {
			parts = append(parts, holding.Stock)
			continue
		}
		if !strings.HasSuffix(pct, "%") {
			pct += "%"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", holding.Stock, pct))
	}
	return corpus.Fields{{Name: dataType, Value: strings.Join(parts, ", ")}}
}

// chunkID derives a stable chunk id from the scheme URL and chunk type, so
// rebuilding over unchanged data produces identical artifacts.
func chunkID(sourceURL string, t corpus.ChunkType) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceURL+"#"+string(t))).String()
}

// isComposite reports whether a raw JSON value is an object or an array.
func isComposite(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// decodeScalar decodes a raw JSON scalar into its field representation.
// Numbers re-format through float64 so "24.50" and "24.5" embed identically.
// The second return is false for objects, arrays and nulls.
func decodeScalar(raw json.RawMessage) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return "", false
	}
	switch v := tok.(type) {
	case string:
		return v, true
	case json.Number:
		return formatNumber(v), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func formatNumber(n json.Number) string {
	v, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
