package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"fundfaq-ai/internal/contextutil"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	corpusSize    int
	generatorMode string
}

// NewHealthHandler creates a new HealthHandler. corpusSize and generatorMode
// are fixed at startup: the corpus is immutable and the generation strategy
// is selected once.
func NewHealthHandler(corpusSize int, generatorMode string) *HealthHandler {
	return &HealthHandler{
		corpusSize:    corpusSize,
		generatorMode: generatorMode,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Check the health status of the system. Returns 200 OK when the corpus is
// loaded, 503 Service Unavailable otherwise.
//
// swagger:route GET /health healthCheck
//
// # Health check endpoint
//
// Returns the health status of the system including corpus size and the
// selected generation strategy.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: System is healthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: System is unhealthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	var issues []string

	// Startup refuses to serve an empty corpus, so this check only trips if
	// the handler was wired up wrong.
	if h.corpusSize > 0 {
		checks["corpus"] = "ok"
	} else {
		checks["corpus"] = "error"
		issues = append(issues, "corpus_empty")
	}
	checks["generator"] = h.generatorMode

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if len(issues) > 0 {
		response.Issues = issues
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
