package rag

import (
	"fmt"
	"strings"

	"fundfaq-ai/internal/corpus"
)

// builtContext is the outcome of context assembly: the rendered block and
// the chunks it actually includes, in rendering order. Source attribution
// must come from these chunks and nothing else.
type builtContext struct {
	text   string
	chunks []*corpus.Chunk
}

// buildContext renders ranked chunks into the numbered context block handed
// to the generator. A (fund, chunk type) pair appears at most once; because
// input arrives best first, the highest-scoring instance wins.
func buildContext(ranked []scoredChunk) builtContext {
	lines := []string{"Relevant information about UTI mutual funds:"}

	included := make([]*corpus.Chunk, 0, len(ranked))
	seen := make(map[string]bool, len(ranked))
	for _, sc := range ranked {
		key := sc.chunk.FundName + "\x00" + string(sc.chunk.Type)
		if seen[key] {
			continue
		}
		seen[key] = true
		included = append(included, sc.chunk)

		lines = append(lines, fmt.Sprintf("\n%d. Fund: %s", len(included), sc.chunk.FundName))
		lines = append(lines, fmt.Sprintf("   Category: %s", titleCase(string(sc.chunk.Type))))
		for _, field := range sc.chunk.Data {
			lines = append(lines, fmt.Sprintf("   %s: %s", titleCase(field.Name), field.Value))
		}
		lines = append(lines, fmt.Sprintf("   Source: %s", sc.chunk.SourceURL))
	}

	return builtContext{text: strings.Join(lines, "\n"), chunks: included}
}

// titleCase renders a snake_case identifier as spaced words, first letters
// uppercased: "expense_ratio" becomes "Expense Ratio".
func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
