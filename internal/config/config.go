package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MaxTopK caps how many chunks a single query may pull into context,
// including any per-question count override parsed from the question text.
const MaxTopK = 15

// maxGenerationTimeout is the hard ceiling for the remote generation call.
const maxGenerationTimeout = 300 * time.Second

// Config holds all configuration for the application.
type Config struct {
	APIPort             string
	LogLevel            slog.Level
	LogFormat           string
	CorpusPath          string
	EmbeddingsPath      string
	EmbeddingModelPath  string
	GeminiAPIKey        string
	GeminiBaseURL       string
	GeminiModel         string
	GenerationTimeout   time.Duration
	SimilarityThreshold float64
	TopK                int
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates derived fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	// Try to find project root by looking for a .env file
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "5000"),
		CorpusPath:         getEnv("CORPUS_PATH", "./rag_data/rag_chunks.json"),
		EmbeddingsPath:     getEnv("EMBEDDINGS_PATH", "./rag_data/embeddings.json"),
		EmbeddingModelPath: getEnv("EMBEDDING_MODEL_PATH", "./models/wordvec.vec"),
		// GOOGLE_API_KEY is optional: its presence selects remote answer
		// generation, its absence the deterministic template.
		GeminiAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	format := getEnv("LOG_FORMAT", "text")
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", format)
	}
	cfg.LogFormat = format

	timeoutSecs, err := strconv.Atoi(getEnv("GENERATION_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("GENERATION_TIMEOUT_SECONDS must be a valid integer: %w", err)
	}
	if timeoutSecs <= 0 {
		return nil, fmt.Errorf("GENERATION_TIMEOUT_SECONDS must be greater than 0")
	}
	cfg.GenerationTimeout = time.Duration(timeoutSecs) * time.Second
	if cfg.GenerationTimeout > maxGenerationTimeout {
		return nil, fmt.Errorf("GENERATION_TIMEOUT_SECONDS must not exceed %d", int(maxGenerationTimeout.Seconds()))
	}

	threshold, err := strconv.ParseFloat(getEnv("SIMILARITY_THRESHOLD", "0.2"), 64)
	if err != nil {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be a valid number: %w", err)
	}
	// A zero threshold would let the neutral zero-vector embedding match
	// everything, so the lower bound is strict.
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1], got %v", threshold)
	}
	cfg.SimilarityThreshold = threshold

	topK, err := strconv.Atoi(getEnv("TOP_K", "10"))
	if err != nil {
		return nil, fmt.Errorf("TOP_K must be a valid integer: %w", err)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("TOP_K must be greater than 0")
	}
	if topK > MaxTopK {
		return nil, fmt.Errorf("TOP_K must not exceed %d", MaxTopK)
	}
	cfg.TopK = topK

	return cfg, nil
}

// parseLogLevel maps a LOG_LEVEL string onto a slog level.
func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", s)
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
