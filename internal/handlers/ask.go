package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fundfaq-ai/internal/contextutil"
	"fundfaq-ai/internal/rag"
)

// AskHandler handles HTTP requests for fund questions.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest represents the HTTP request payload for fund questions.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse represents the HTTP response payload for fund questions.
// This mirrors rag.AskResponse but is defined here for HTTP layer separation.
//
// swagger:model AskResponse
type AskResponse struct {
	// The generated answer text
	Response string `json:"response"`

	// Attribution for the chunks the answer was built from; empty for
	// greetings, refusals and no-match answers
	Sources []SourceResponse `json:"sources"`
}

// SourceResponse represents a source attribution entry in the HTTP response.
//
// swagger:model SourceResponse
type SourceResponse struct {
	// Name of the fund the information came from
	FundName string `json:"fund_name"`

	// Page the information was scraped from
	URL string `json:"url"`

	// Chunk type the information belongs to
	Type string `json:"type"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for fund questions.
//
// Ask a question about UTI mutual funds and get an answer grounded in the
// scraped fund corpus, along with the sources the answer was built from.
//
// swagger:route POST /ask askQuestion
//
// # Ask a fund question
//
// Queries the retrieval pipeline with a question. Advice questions are
// refused and greetings are answered directly; both carry empty sources.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// parameters:
//   - in: body
//     name: body
//     required: true
//     schema:
//     "$ref": "#/definitions/AskRequest"
//
// responses:
//
//	'200':
//	  description: Successful response with answer and sources
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Bad request (missing or empty question)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'500':
//	  description: Internal server error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		h.writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	ragResp, err := h.engine.Ask(ctx, req.Question)
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}

	// Convert engine sources to HTTP response entries. The slice is always
	// non-nil so the JSON field renders as [] rather than null.
	sources := make([]SourceResponse, 0, len(ragResp.Sources))
	for _, src := range ragResp.Sources {
		sources = append(sources, SourceResponse{
			FundName: src.FundName,
			URL:      src.URL,
			Type:     src.Type,
		})
	}

	resp := AskResponse{
		Response: ragResp.Response,
		Sources:  sources,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
}

// handleEngineError maps engine errors to HTTP status codes. Anything that is
// not a validation problem becomes a generic 500; details stay in the log.
func (h *AskHandler) handleEngineError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *rag.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "invalid question", "error", err)
		if errors.Is(err, rag.ErrEmptyQuestion) {
			h.writeError(w, http.StatusBadRequest, "Question is required")
			return
		}
		h.writeError(w, http.StatusBadRequest, "Invalid question")
		return
	}

	logger.ErrorContext(ctx, "engine error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Failed to process question")
}

// writeError writes an error response.
func (h *AskHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
