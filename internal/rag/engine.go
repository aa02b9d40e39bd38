package rag

import (
	"context"
	"fmt"
	"strings"

	"fundfaq-ai/internal/contextutil"
	"fundfaq-ai/internal/corpus"
)

// Embedder turns question text into a vector of the corpus dimension. Text
// the encoder cannot represent maps to the zero vector, which never clears a
// positive similarity threshold.
type Embedder interface {
	Encode(text string) []float32
}

// Engine answers questions over the fund corpus.
type Engine interface {
	// Ask answers one question. Refusals, greetings and no-match answers are
	// successful responses; an error means the question was invalid or the
	// pipeline itself failed.
	Ask(ctx context.Context, question string) (AskResponse, error)
}

// Options bound retrieval for an engine instance.
type Options struct {
	// Threshold is the minimum cosine similarity a chunk must reach, in (0, 1].
	Threshold float64
	// TopK is the default number of chunks forwarded to context building.
	TopK int
	// MaxTopK caps per-question "N funds" overrides of TopK.
	MaxTopK int
}

type engine struct {
	corpus    *corpus.Corpus
	embedder  Embedder
	generator Generator
	opts      Options
}

// NewEngine creates an Engine over an immutable corpus. Everything the
// engine holds is fixed at construction, so one instance serves concurrent
// requests without locking.
func NewEngine(c *corpus.Corpus, embedder Embedder, generator Generator, opts Options) (Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("corpus must not be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder must not be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator must not be nil")
	}
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1], got %v", opts.Threshold)
	}
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("top-k must be greater than 0, got %d", opts.TopK)
	}
	if opts.MaxTopK < opts.TopK {
		return nil, fmt.Errorf("max top-k %d must not be below top-k %d", opts.MaxTopK, opts.TopK)
	}
	return &engine{corpus: c, embedder: embedder, generator: generator, opts: opts}, nil
}

func (e *engine) Ask(ctx context.Context, question string) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return AskResponse{}, ErrEmptyQuestion
	}

	q := newQuery(trimmed)
	logger.InfoContext(ctx, "question received", "length", len(trimmed))

	if err := q.transition(stateGuardrailChecked); err != nil {
		return AskResponse{}, err
	}
	switch checkGuardrails(q.lowered) {
	case verdictRefuse:
		if err := q.transition(stateRefused); err != nil {
			return AskResponse{}, err
		}
		logger.InfoContext(ctx, "advice question refused", "outcome", OutcomeRefused)
		return AskResponse{Response: refusalText, Sources: []Source{}, Outcome: OutcomeRefused}, nil
	case verdictGreet:
		if err := q.transition(stateGreeted); err != nil {
			return AskResponse{}, err
		}
		logger.InfoContext(ctx, "greeting detected", "outcome", OutcomeGreeted)
		return AskResponse{Response: welcomeText, Sources: []Source{}, Outcome: OutcomeGreeted}, nil
	}

	if err := q.transition(stateRouted); err != nil {
		return AskResponse{}, err
	}
	types := routeQuery(q.lowered)
	logger.DebugContext(ctx, "question routed", "type_count", len(types))

	if err := q.transition(stateRetrieved); err != nil {
		return AskResponse{}, err
	}
	queryVec := e.embedder.Encode(trimmed)
	limit := requestedChunkLimit(q.lowered, e.opts.TopK, e.opts.MaxTopK)
	candidates := e.corpus.ByTypes(types...)
	ranked := rankChunks(queryVec, candidates, e.opts.Threshold, limit)
	logger.InfoContext(ctx, "retrieval completed",
		"candidates", len(candidates),
		"ranked", len(ranked),
		"limit", limit,
	)

	if len(ranked) == 0 {
		if err := q.transition(stateNoMatch); err != nil {
			return AskResponse{}, err
		}
		logger.InfoContext(ctx, "no chunk reached the similarity threshold", "outcome", OutcomeNoMatch)
		return AskResponse{Response: noInformationText, Sources: []Source{}, Outcome: OutcomeNoMatch}, nil
	}

	ranked = focusOnMentionedFunds(q.lowered, ranked)

	if err := q.transition(stateContextBuilt); err != nil {
		return AskResponse{}, err
	}
	built := buildContext(ranked)
	logger.DebugContext(ctx, "context built", "chunks", len(built.chunks), "context_length", len(built.text))

	answer, err := e.generator.Generate(ctx, trimmed, built.text)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		return AskResponse{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	if err := q.transition(stateAnswered); err != nil {
		return AskResponse{}, err
	}
	logger.InfoContext(ctx, "question answered",
		"outcome", OutcomeAnswered,
		"sources", len(built.chunks),
		"answer_length", len(answer),
	)

	return AskResponse{
		Response: answer,
		Sources:  assembleSources(built.chunks),
		Outcome:  OutcomeAnswered,
	}, nil
}

// assembleSources maps context chunks onto attribution entries in context
// order, one entry per chunk id.
func assembleSources(chunks []*corpus.Chunk) []Source {
	sources := make([]Source, 0, len(chunks))
	seen := make(map[string]bool, len(chunks))
	for _, ch := range chunks {
		if seen[ch.ID] {
			continue
		}
		seen[ch.ID] = true
		sources = append(sources, Source{
			FundName: ch.FundName,
			URL:      ch.SourceURL,
			Type:     string(ch.Type),
		})
	}
	return sources
}
