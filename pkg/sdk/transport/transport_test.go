package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gradio-app/trackio-go/pkg/sdk/model"
)

func testPayload() model.BulkLogPayload {
	step := 3
	return model.NewBulkLogPayload("demo", "run-1", []model.LogItem{
		{Metrics: map[string]any{"loss": 0.5}, Step: &step, Timestamp: "2026-01-01T00:00:00Z"},
	})
}

func TestHTTP_Post_Success(t *testing.T) {
	var receivedBody map[string]any
	var receivedToken string
	var receivedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %v, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %v, want application/json", ct)
		}
		receivedToken = r.Header.Get(WriteTokenHeader)
		receivedPath = r.URL.Path

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if err := json.Unmarshal(body, &receivedBody); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := NewHTTP(server.URL, "secret-token", 5*time.Second)
	if err := tr.Post(context.Background(), "/api/bulk_log", testPayload()); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	if receivedPath != "/api/bulk_log" {
		t.Errorf("path = %v, want /api/bulk_log", receivedPath)
	}
	if receivedToken != "secret-token" {
		t.Errorf("write token = %v, want secret-token", receivedToken)
	}
	if receivedBody["project"] != "demo" || receivedBody["run"] != "run-1" {
		t.Errorf("payload project/run = %v/%v", receivedBody["project"], receivedBody["run"])
	}
	steps := receivedBody["steps"].([]any)
	if len(steps) != 1 || steps[0].(float64) != 3 {
		t.Errorf("steps = %v, want [3]", steps)
	}
}

func TestHTTP_Post_NoTokenHeaderWhenUnset(t *testing.T) {
	var hadToken bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadToken = r.Header[WriteTokenHeader]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := NewHTTP(server.URL, "", 5*time.Second)
	if err := tr.Post(context.Background(), "/api/bulk_log", testPayload()); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if hadToken {
		t.Error("write token header sent even though no token is configured")
	}
}

func TestHTTP_Post_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such route", http.StatusNotFound)
	}))
	defer server.Close()

	tr := NewHTTP(server.URL, "", 5*time.Second)
	err := tr.Post(context.Background(), "/api/bulk_log", testPayload())

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %T: %v", err, err)
	}
	if nf.Body == "" {
		t.Error("NotFoundError should carry the response body")
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound() = false for a 404")
	}
}

func TestHTTP_Post_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := NewHTTP(server.URL, "", 5*time.Second)
	err := tr.Post(context.Background(), "/api/bulk_log", testPayload())

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if se.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", se.Code)
	}
	if se.Body == "" {
		t.Error("StatusError should carry the response body")
	}
	if IsNotFound(err) {
		t.Error("IsNotFound() = true for a 500")
	}
}

func TestHTTP_Post_TransportError(t *testing.T) {
	// Grab a port that nothing listens on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	tr := NewHTTP(url, "", 500*time.Millisecond)
	err := tr.Post(context.Background(), "/api/bulk_log", testPayload())

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if te.Unwrap() == nil {
		t.Error("TransportError should wrap the underlying cause")
	}
}
