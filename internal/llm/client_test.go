package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_GenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1beta/models/gemini-1.5-flash:generateContent" {
			t.Errorf("path = %s, want /v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			t.Errorf("unexpected request shape: %+v", req)
		} else if got := req.Contents[0].Parts[0].Text; got != "What is the expense ratio?" {
			t.Errorf("prompt = %q, want the question", got)
		}

		resp := GenerateResponse{
			Candidates: []Candidate{
				{Content: Content{Parts: []Part{{Text: "The expense ratio is 0.21%."}}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gemini-1.5-flash", 5*time.Second)

	got, err := client.GenerateContent(context.Background(), "What is the expense ratio?")
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	if got != "The expense ratio is 0.21%." {
		t.Errorf("GenerateContent() = %q, want %q", got, "The expense ratio is 0.21%.")
	}
}

func TestClient_GenerateContent_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gemini-1.5-flash", 5*time.Second)

	_, err := client.GenerateContent(context.Background(), "question")
	if err == nil {
		t.Fatal("GenerateContent() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "bad status 429") {
		t.Errorf("error = %v, want it to contain %q", err, "bad status 429")
	}
}

func TestClient_GenerateContent_NoCandidates(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty candidates", body: `{"candidates": []}`},
		{name: "candidate without parts", body: `{"candidates": [{"content": {"parts": []}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "gemini-1.5-flash", 5*time.Second)

			_, err := client.GenerateContent(context.Background(), "question")
			if err == nil {
				t.Fatal("GenerateContent() expected error, got nil")
			}
			if !strings.Contains(err.Error(), "no candidates") {
				t.Errorf("error = %v, want it to contain %q", err, "no candidates")
			}
		})
	}
}

func TestClient_GenerateContent_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gemini-1.5-flash", 5*time.Second)

	_, err := client.GenerateContent(context.Background(), "question")
	if err == nil {
		t.Fatal("GenerateContent() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to decode response") {
		t.Errorf("error = %v, want it to contain %q", err, "failed to decode response")
	}
}

func TestClient_GenerateContent_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, "test-key", "gemini-1.5-flash", 50*time.Millisecond)

	_, err := client.GenerateContent(context.Background(), "question")
	if err == nil {
		t.Fatal("GenerateContent() expected timeout error, got nil")
	}
}
