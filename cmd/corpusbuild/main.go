package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"fundfaq-ai/internal/corpus"
	"fundfaq-ai/internal/embed"
	"fundfaq-ai/internal/indexer"
	"fundfaq-ai/internal/storage"
)

// corpusbuild turns the scraped schemes database into the two artifacts the
// API server loads at startup: rag_chunks.json and embeddings.json.
func main() {
	dbPath := flag.String("db", "./data/mutual_funds.db", "path to the scraped schemes database")
	modelPath := flag.String("model", "./models/wordvec.vec", "path to the word-vector model file")
	outDir := flag.String("out", "./rag_data", "directory to write the corpus artifacts to")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	db, err := storage.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	encoder, err := embed.LoadModel(*modelPath)
	if err != nil {
		log.Fatalf("Failed to load embedding model: %v", err)
	}
	slog.Info("Embedding model loaded", "model", encoder.Name(), "dimension", encoder.Dimension())

	pipeline := indexer.NewPipeline(storage.NewSchemeRepo(db), encoder)
	chunks, set, err := pipeline.Build(context.Background())
	if err != nil {
		log.Fatalf("Failed to build corpus: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	corpusPath := filepath.Join(*outDir, "rag_chunks.json")
	embeddingsPath := filepath.Join(*outDir, "embeddings.json")
	if err := corpus.WriteCorpusFile(corpusPath, chunks); err != nil {
		log.Fatalf("Failed to write corpus file: %v", err)
	}
	if err := corpus.WriteEmbeddingsFile(embeddingsPath, set); err != nil {
		log.Fatalf("Failed to write embeddings file: %v", err)
	}

	// Re-load through the serving loader so a broken artifact fails here
	// rather than at server startup.
	verified, err := corpus.Load(corpusPath, embeddingsPath)
	if err != nil {
		log.Fatalf("Artifact verification failed: %v", err)
	}
	slog.Info("Corpus artifacts written",
		"corpus", corpusPath,
		"embeddings", embeddingsPath,
		"chunks", verified.Len(),
		"model", verified.Model(),
		"dimension", verified.Dimension())
}
