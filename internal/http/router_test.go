package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fundfaq-ai/internal/rag"
)

type stubEngine struct {
	response rag.AskResponse
	err      error
}

func (s *stubEngine) Ask(_ context.Context, _ string) (rag.AskResponse, error) {
	if s.err != nil {
		return rag.AskResponse{}, s.err
	}
	return s.response, nil
}

func testDeps() *Deps {
	return &Deps{
		Engine: &stubEngine{
			response: rag.AskResponse{
				Response: "Hello! Ask me anything about UTI mutual funds.",
				Sources:  []rag.Source{},
				Outcome:  rag.OutcomeGreeted,
			},
		},
		CorpusSize:    42,
		GeneratorMode: "template",
		IndexHTML:     "<html><body>Test</body></html>",
	}
}

func TestNewRouter(t *testing.T) {
	router := NewRouter(testDeps())

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	router := NewRouter(testDeps())

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "GET root serves HTML",
			method:     http.MethodGet,
			path:       "/",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /ask answers",
			method:     http.MethodPost,
			path:       "/ask",
			body:       `{"question": "hi"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /ask rejects empty body",
			method:     http.MethodPost,
			path:       "/ask",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /ask method not allowed",
			method:     http.MethodGet,
			path:       "/ask",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "GET /health",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /health method not allowed",
			method:     http.MethodPost,
			path:       "/health",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_AskResponseBody(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question": "hi"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Router POST /ask status = %v, want %v", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Hello! Ask me anything about UTI mutual funds.") {
		t.Errorf("Router POST /ask body = %v, want the engine answer", body)
	}
	if !strings.Contains(body, `"sources":[]`) {
		t.Errorf("Router POST /ask body = %v, want empty sources array", body)
	}
}

func TestRouter_RootServesHTML(t *testing.T) {
	htmlContent := "<html><body>Test HTML</body></html>"
	deps := testDeps()
	deps.IndexHTML = htmlContent

	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Router GET / status = %v, want %v", w.Code, http.StatusOK)
	}

	if w.Body.String() != htmlContent {
		t.Errorf("Router GET / body = %v, want %v", w.Body.String(), htmlContent)
	}

	if w.Header().Get("Content-Type") != "text/html; charset=utf-8" {
		t.Errorf("Router GET / Content-Type = %v, want text/html; charset=utf-8", w.Header().Get("Content-Type"))
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodPost, "/ask", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
}
