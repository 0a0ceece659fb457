package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Talin12/DataSage/internal/config"
)

func TestNewClient_MissingAPIKey(t *testing.T) {
	if _, err := NewClient(config.LLMConfig{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(config.LLMConfig{APIKey: "hf-test"})
	if err != nil {
		t.Fatal(err)
	}
	if client.model != defaultModel {
		t.Errorf("expected default model %s, got %s", defaultModel, client.model)
	}
	if client.baseURL != defaultBaseURL {
		t.Errorf("expected default base URL %s, got %s", defaultBaseURL, client.baseURL)
	}
	if client.maxTokens != defaultMaxTokens {
		t.Errorf("expected default max tokens %d, got %d", defaultMaxTokens, client.maxTokens)
	}
	if client.http.Timeout != defaultTimeout {
		t.Errorf("expected default timeout %s, got %s", defaultTimeout, client.http.Timeout)
	}
}

func TestCompletionsURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", defaultBaseURL},
		{"https://openrouter.ai/api/v1", "https://openrouter.ai/api/v1/chat/completions"},
		{"https://openrouter.ai/api/v1/", "https://openrouter.ai/api/v1/chat/completions"},
		{"http://localhost:8000/v1/chat/completions", "http://localhost:8000/v1/chat/completions"},
	}
	for _, tt := range tests {
		if got := completionsURL(tt.in); got != tt.want {
			t.Errorf("completionsURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClient_Complete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer hf-test" {
			t.Error("missing or wrong auth header")
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "test-model" {
			t.Errorf("expected model test-model, got %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.Temperature != 0.2 {
			t.Errorf("expected temperature 0.2, got %v", req.Temperature)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  [{\"render\":\"kpi\"}]\n"}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(config.LLMConfig{APIKey: "hf-test", Model: "test-model", BaseURL: srv.URL, Temperature: 0.2})
	if err != nil {
		t.Fatal(err)
	}

	out, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "plan"},
		{Role: "user", Content: "total revenue"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `[{"render":"kpi"}]` {
		t.Errorf("expected trimmed content, got %q", out)
	}
}

func TestClient_Complete_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	client, _ := NewClient(config.LLMConfig{APIKey: "k", BaseURL: srv.URL})
	client.retryDelay = time.Millisecond

	out, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "ok" || calls.Load() != 3 {
		t.Errorf("expected ok after 3 calls, got %q after %d", out, calls.Load())
	}
}

func TestClient_Complete_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer srv.Close()

	client, _ := NewClient(config.LLMConfig{APIKey: "k", BaseURL: srv.URL})
	client.retryDelay = time.Millisecond

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Fatalf("expected StatusError 400, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestClient_Complete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer srv.Close()

	client, _ := NewClient(config.LLMConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := client.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error from error payload")
	}
}
