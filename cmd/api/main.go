package main

import (
	_ "embed"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"fundfaq-ai/internal/config"
	"fundfaq-ai/internal/corpus"
	"fundfaq-ai/internal/embed"
	"fundfaq-ai/internal/http"
	"fundfaq-ai/internal/llm"
	"fundfaq-ai/internal/rag"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers factual questions about UTI mutual funds using RAG
// (Retrieval-Augmented Generation) over a corpus of scraped fund facts.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: FundFAQ AI API
//   description: |
//     RAG (Retrieval-Augmented Generation) API for answering factual questions
//     about UTI mutual funds. Questions are matched against a corpus of fund
//     facts scraped from Groww; answers cite the pages the facts came from.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

//go:embed index.html
var indexHTML string

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Load the embedding model the corpus was built with
	encoder, err := embed.LoadModel(cfg.EmbeddingModelPath)
	if err != nil {
		log.Fatalf("Failed to load embedding model: %v", err)
	}
	slog.Info("Embedding model loaded", "model", encoder.Name(), "dimension", encoder.Dimension())

	// Load the corpus artifacts written by cmd/corpusbuild
	corp, err := corpus.Load(cfg.CorpusPath, cfg.EmbeddingsPath)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	slog.Info("Corpus loaded", "chunks", corp.Len(), "model", corp.Model())

	// Fail fast when the artifacts come from a different model
	if corp.Model() != encoder.Name() {
		log.Fatalf("Corpus was embedded with model %q, loaded model is %q", corp.Model(), encoder.Name())
	}
	if corp.Dimension() != encoder.Dimension() {
		log.Fatalf("Corpus embedding dimension mismatch: corpus has %d, model has %d", corp.Dimension(), encoder.Dimension())
	}

	// Select the answer generation strategy once at startup: remote Gemini
	// when an API key is configured, the deterministic template otherwise.
	// The remote strategy keeps the template as its fallback.
	generator := rag.NewTemplateGenerator()
	generatorMode := "template"
	if cfg.GeminiAPIKey != "" {
		client := llm.NewClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GenerationTimeout)
		generator = rag.WithFallback(rag.NewRemoteGenerator(client), rag.NewTemplateGenerator())
		generatorMode = "remote+fallback"
	}

	// Create RAG engine
	ragEngine, err := rag.NewEngine(corp, encoder, generator, rag.Options{
		Threshold: cfg.SimilarityThreshold,
		TopK:      cfg.TopK,
		MaxTopK:   config.MaxTopK,
	})
	if err != nil {
		log.Fatalf("Failed to create RAG engine: %v", err)
	}
	slog.Info("RAG engine initialized",
		"generator", generatorMode,
		"threshold", cfg.SimilarityThreshold,
		"top_k", cfg.TopK)

	// Create router with dependencies
	deps := &http.Deps{
		Engine:        ragEngine,
		CorpusSize:    corp.Len(),
		GeneratorMode: generatorMode,
		IndexHTML:     indexHTML,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if cfg.GeminiAPIKey != "" {
		slog.Debug("Gemini configuration", "base_url", cfg.GeminiBaseURL, "model", cfg.GeminiModel)
	}
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
