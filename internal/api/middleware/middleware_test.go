package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := chimw.RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["msg"] != "http request" {
		t.Errorf("unexpected msg %v", line["msg"])
	}
	if line["status"] != float64(http.StatusTeapot) {
		t.Errorf("expected status 418, got %v", line["status"])
	}
	if line["path"] != "/api/v1/datasets" {
		t.Errorf("unexpected path %v", line["path"])
	}
	if line["bytes"] != float64(len("short and stout")) {
		t.Errorf("unexpected bytes %v", line["bytes"])
	}
	if id, _ := line["request_id"].(string); id == "" {
		t.Error("expected a request id")
	}
}

func TestLogger_ServerErrorsLogAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/ask", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["level"] != "ERROR" {
		t.Errorf("expected ERROR level, got %v", line["level"])
	}
}

func TestCORS(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/ask", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
	if called {
		t.Error("preflight should not reach the handler")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing allow-origin header")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if !called {
		t.Error("GET should reach the handler")
	}
}
