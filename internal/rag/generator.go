package rag

import (
	"context"
	"fmt"

	"fundfaq-ai/internal/contextutil"
)

//go:generate mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks

// Generator produces the answer text for a question given the assembled
// context block.
type Generator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
}

// GenerationClient is the remote completion surface the remote generator
// depends on.
type GenerationClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

const answerPrompt = `You are a helpful assistant answering questions about UTI mutual funds.
Use the following context to answer the question accurately and concisely.

Context:
%s

Question: %s

Please provide a helpful, conversational response based on the context above.
If the context doesn't contain relevant information, politely say so.
Format your response in a clear, easy-to-read manner.
This is for factual information only. Do not provide investment advice.

Response:`

type remoteGenerator struct {
	client GenerationClient
}

// NewRemoteGenerator creates a Generator backed by a remote completion API.
func NewRemoteGenerator(client GenerationClient) Generator {
	return &remoteGenerator{client: client}
}

func (g *remoteGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	prompt := fmt.Sprintf(answerPrompt, contextText, question)
	answer, err := g.client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return answer, nil
}

type templateGenerator struct{}

// NewTemplateGenerator creates the deterministic Generator used when no
// remote API is configured: it prefixes the context block, which already
// carries every retrieved fact verbatim.
func NewTemplateGenerator() Generator {
	return templateGenerator{}
}

func (templateGenerator) Generate(_ context.Context, _ string, contextText string) (string, error) {
	return "Based on the information I found:\n\n" + contextText, nil
}

type fallbackGenerator struct {
	primary  Generator
	fallback Generator
}

// WithFallback wraps primary so that any failure, timeouts included, yields
// the fallback's answer for that request instead of an error. The primary is
// never retried.
func WithFallback(primary, fallback Generator) Generator {
	return &fallbackGenerator{primary: primary, fallback: fallback}
}

func (g *fallbackGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	answer, err := g.primary.Generate(ctx, question, contextText)
	if err == nil {
		return answer, nil
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.WarnContext(ctx, "primary generator failed, falling back", "error", err)
	return g.fallback.Generate(ctx, question, contextText)
}
