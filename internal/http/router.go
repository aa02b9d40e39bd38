package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fundfaq-ai/internal/handlers"
	"fundfaq-ai/internal/rag"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine        rag.Engine
	CorpusSize    int
	GeneratorMode string
	IndexHTML     string // Embedded HTML content
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.Engine)
	healthHandler := handlers.NewHealthHandler(deps.CorpusSize, deps.GeneratorMode)

	r.Method(http.MethodPost, "/ask", askHandler)
	r.Method(http.MethodGet, "/health", healthHandler)

	// Serve the chat page at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(deps.IndexHTML))
	})

	return r
}
