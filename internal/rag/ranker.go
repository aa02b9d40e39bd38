package rag

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"fundfaq-ai/internal/corpus"
)

// scoredChunk pairs a corpus chunk with its similarity to the query.
type scoredChunk struct {
	chunk *corpus.Chunk
	score float64
}

// cosineSimilarity computes the cosine of two equal-length vectors,
// accumulating in float64. A zero-norm vector scores 0 against everything.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankChunks scores candidates against the query vector and returns those at
// or above threshold, best first, capped at limit. sort.SliceStable keeps
// corpus insertion order between equal scores, so results are reproducible.
func rankChunks(queryVec []float32, candidates []*corpus.Chunk, threshold float64, limit int) []scoredChunk {
	ranked := make([]scoredChunk, 0, len(candidates))
	for _, ch := range candidates {
		score := cosineSimilarity(queryVec, ch.Embedding)
		if score >= threshold {
			ranked = append(ranked, scoredChunk{chunk: ch, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

var fundCountPattern = regexp.MustCompile(`(\d+)\s+fund`)

// requestedChunkLimit returns the retrieval limit for a lowercased question.
// An explicit fund count ("show me 5 funds with...") overrides the default,
// capped at maxK to keep responses readable.
func requestedChunkLimit(lowered string, defaultK, maxK int) int {
	m := fundCountPattern.FindStringSubmatch(lowered)
	if m == nil {
		return defaultK
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return defaultK
	}
	if n > maxK {
		return maxK
	}
	return n
}

// focusOnMentionedFunds narrows ranked results to the funds the question
// names in full, when it names at least one. This runs before context
// building so the context and the attributed sources always describe the
// same chunks.
func focusOnMentionedFunds(lowered string, ranked []scoredChunk) []scoredChunk {
	mentioned := make(map[string]bool)
	for _, sc := range ranked {
		if strings.Contains(lowered, strings.ToLower(sc.chunk.FundName)) {
			mentioned[sc.chunk.FundName] = true
		}
	}
	if len(mentioned) == 0 {
		return ranked
	}

	focused := make([]scoredChunk, 0, len(ranked))
	for _, sc := range ranked {
		if mentioned[sc.chunk.FundName] {
			focused = append(focused, sc)
		}
	}
	return focused
}
