package rag

import (
	"math"
	"testing"

	"fundfaq-ai/internal/corpus"
)

func rankerChunk(id, fundName string, embedding []float32) *corpus.Chunk {
	return &corpus.Chunk{
		ID:        id,
		FundName:  fundName,
		Type:      corpus.TypeExpenseInformation,
		Data:      corpus.Fields{{Name: "expense_ratio", Value: "0.5%"}},
		SourceURL: "https://groww.in/mutual-funds/" + id,
		Embedding: embedding,
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{3, 4}, b: []float32{3, 4}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "zero query vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
		{name: "zero candidate vector", a: []float32{1, 0}, b: []float32{0, 0}, want: 0},
		{name: "three four five triangle", a: []float32{1, 0}, b: []float32{3, 4}, want: 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankChunks(t *testing.T) {
	query := []float32{1, 0}

	t.Run("at-threshold kept, below dropped", func(t *testing.T) {
		chunks := []*corpus.Chunk{
			rankerChunk("exact", "UTI Fund A", []float32{1, 0}),  // score 1.0
			rankerChunk("at", "UTI Fund B", []float32{3, 4}),     // score 0.6, exactly the threshold
			rankerChunk("below", "UTI Fund C", []float32{0, 1}),  // score 0
			rankerChunk("zeroed", "UTI Fund D", []float32{0, 0}), // zero norm, score 0
		}

		ranked := rankChunks(query, chunks, 0.6, 10)
		if len(ranked) != 2 {
			t.Fatalf("rankChunks() kept %d chunks, want 2", len(ranked))
		}
		if ranked[0].chunk.ID != "exact" || ranked[1].chunk.ID != "at" {
			t.Errorf("order = [%s %s], want [exact at]", ranked[0].chunk.ID, ranked[1].chunk.ID)
		}
		if ranked[1].score != 0.6 {
			t.Errorf("at-threshold score = %v, want 0.6", ranked[1].score)
		}
	})

	t.Run("equal scores keep insertion order", func(t *testing.T) {
		chunks := []*corpus.Chunk{
			rankerChunk("first", "UTI Fund A", []float32{3, 4}),
			rankerChunk("second", "UTI Fund B", []float32{3, 4}),
			rankerChunk("best", "UTI Fund C", []float32{1, 0}),
		}

		ranked := rankChunks(query, chunks, 0.2, 10)
		if len(ranked) != 3 {
			t.Fatalf("rankChunks() kept %d chunks, want 3", len(ranked))
		}
		wantOrder := []string{"best", "first", "second"}
		for i, want := range wantOrder {
			if ranked[i].chunk.ID != want {
				t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].chunk.ID, want)
			}
		}
	})

	t.Run("limit caps the result", func(t *testing.T) {
		chunks := []*corpus.Chunk{
			rankerChunk("a", "UTI Fund A", []float32{1, 0}),
			rankerChunk("b", "UTI Fund B", []float32{4, 3}),
			rankerChunk("c", "UTI Fund C", []float32{3, 4}),
		}

		ranked := rankChunks(query, chunks, 0.2, 2)
		if len(ranked) != 2 {
			t.Fatalf("rankChunks() kept %d chunks, want 2", len(ranked))
		}
		if ranked[0].chunk.ID != "a" || ranked[1].chunk.ID != "b" {
			t.Errorf("order = [%s %s], want [a b]", ranked[0].chunk.ID, ranked[1].chunk.ID)
		}
	})

	t.Run("nothing above threshold yields empty", func(t *testing.T) {
		chunks := []*corpus.Chunk{
			rankerChunk("below", "UTI Fund A", []float32{0, 1}),
		}
		if ranked := rankChunks(query, chunks, 0.2, 10); len(ranked) != 0 {
			t.Errorf("rankChunks() kept %d chunks, want 0", len(ranked))
		}
	})

	t.Run("zero query vector matches nothing", func(t *testing.T) {
		chunks := []*corpus.Chunk{
			rankerChunk("a", "UTI Fund A", []float32{1, 0}),
			rankerChunk("b", "UTI Fund B", []float32{0, 1}),
		}
		if ranked := rankChunks([]float32{0, 0}, chunks, 0.2, 10); len(ranked) != 0 {
			t.Errorf("rankChunks() kept %d chunks, want 0", len(ranked))
		}
	})
}

func TestRequestedChunkLimit(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     int
	}{
		{name: "no count requested", question: "what are the expense ratios?", want: 10},
		{name: "explicit count", question: "show me 5 funds with low expense ratios", want: 5},
		{name: "count above cap", question: "list 50 funds by aum", want: 15},
		{name: "count at cap", question: "list 15 funds by aum", want: 15},
		{name: "singular fund", question: "show 1 fund with the lowest fee", want: 1},
		{name: "zero count falls back", question: "show 0 funds", want: 10},
		{name: "digits without fund word", question: "returns over 5 years", want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := requestedChunkLimit(tt.question, 10, 15); got != tt.want {
				t.Errorf("requestedChunkLimit(%q) = %d, want %d", tt.question, got, tt.want)
			}
		})
	}
}

func TestFocusOnMentionedFunds(t *testing.T) {
	ranked := []scoredChunk{
		{chunk: rankerChunk("f1", "UTI Flexi Cap Fund Direct Growth", []float32{1, 0}), score: 0.9},
		{chunk: rankerChunk("n1", "UTI Nifty Index Fund Direct Growth", []float32{1, 0}), score: 0.8},
		{chunk: rankerChunk("f2", "UTI Flexi Cap Fund Direct Growth", []float32{1, 0}), score: 0.7},
	}

	t.Run("mentioned fund keeps only its chunks", func(t *testing.T) {
		got := focusOnMentionedFunds("what is the expense ratio of uti flexi cap fund direct growth?", ranked)
		if len(got) != 2 {
			t.Fatalf("focus kept %d chunks, want 2", len(got))
		}
		if got[0].chunk.ID != "f1" || got[1].chunk.ID != "f2" {
			t.Errorf("kept [%s %s], want [f1 f2]", got[0].chunk.ID, got[1].chunk.ID)
		}
	})

	t.Run("two mentions keep both funds", func(t *testing.T) {
		question := "expense ratio of uti flexi cap fund direct growth and uti nifty index fund direct growth"
		if got := focusOnMentionedFunds(question, ranked); len(got) != 3 {
			t.Errorf("focus kept %d chunks, want all 3", len(got))
		}
	})

	t.Run("no mention leaves ranking unchanged", func(t *testing.T) {
		if got := focusOnMentionedFunds("what is the expense ratio?", ranked); len(got) != 3 {
			t.Errorf("focus kept %d chunks, want all 3", len(got))
		}
	})

	t.Run("partial fund name is not a mention", func(t *testing.T) {
		if got := focusOnMentionedFunds("tell me about the flexi cap expense ratio", ranked); len(got) != 3 {
			t.Errorf("focus kept %d chunks, want all 3", len(got))
		}
	})
}
