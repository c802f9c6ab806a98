package transport

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gradio-app/trackio-go/pkg/sdk/model"
)

// fakeTransport maps paths to canned errors and records every POST.
type fakeTransport struct {
	mu        sync.Mutex
	responses map[string]error
	posts     []string
}

func (f *fakeTransport) Post(ctx context.Context, path string, payload model.BulkLogPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, path)
	return f.responses[path]
}

func (f *fakeTransport) postedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.posts))
	copy(out, f.posts)
	return out
}

func TestResolver_PrimarySucceeds(t *testing.T) {
	ft := &fakeTransport{responses: map[string]error{}}
	r := NewResolver(ft, nil)

	if err := r.Post(context.Background(), model.BulkLogPayload{}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	path, ok := r.Resolved()
	if !ok || path != "/api/bulk_log" {
		t.Fatalf("resolved = %q, %v; want /api/bulk_log, true", path, ok)
	}
	posts := ft.postedPaths()
	if len(posts) != 1 {
		t.Fatalf("expected a single POST (the resolving POST delivers the batch), got %v", posts)
	}
}

func TestResolver_FallbackCachedAfter404(t *testing.T) {
	ft := &fakeTransport{responses: map[string]error{
		"/api/bulk_log": &NotFoundError{Body: "not here"},
	}}
	r := NewResolver(ft, nil)

	if err := r.Post(context.Background(), model.BulkLogPayload{}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	path, _ := r.Resolved()
	if path != "/gradio_api/bulk_log" {
		t.Fatalf("resolved = %q, want /gradio_api/bulk_log", path)
	}

	// Next flush must go straight to the cached fallback, never retrying
	// the primary even though it would now also succeed.
	ft.mu.Lock()
	delete(ft.responses, "/api/bulk_log")
	ft.mu.Unlock()

	if err := r.Post(context.Background(), model.BulkLogPayload{}); err != nil {
		t.Fatalf("second Post() error = %v", err)
	}
	posts := ft.postedPaths()
	want := []string{"/api/bulk_log", "/gradio_api/bulk_log", "/gradio_api/bulk_log"}
	if len(posts) != len(want) {
		t.Fatalf("posts = %v, want %v", posts, want)
	}
	for i := range want {
		if posts[i] != want[i] {
			t.Fatalf("posts = %v, want %v", posts, want)
		}
	}
}

func TestResolver_AllCandidates404(t *testing.T) {
	ft := &fakeTransport{responses: map[string]error{
		"/api/bulk_log":        &NotFoundError{},
		"/gradio_api/bulk_log": &NotFoundError{},
	}}
	r := NewResolver(ft, nil)

	err := r.Post(context.Background(), model.BulkLogPayload{})
	if !errors.Is(err, ErrNoBulkEndpoint) {
		t.Fatalf("expected ErrNoBulkEndpoint, got %v", err)
	}
	if _, ok := r.Resolved(); ok {
		t.Fatal("cache must stay unset after a failed resolution")
	}

	// Server comes up: the next flush retries resolution from scratch.
	ft.mu.Lock()
	ft.responses = map[string]error{}
	ft.mu.Unlock()

	if err := r.Post(context.Background(), model.BulkLogPayload{}); err != nil {
		t.Fatalf("Post() after recovery error = %v", err)
	}
	if path, _ := r.Resolved(); path != "/api/bulk_log" {
		t.Fatalf("resolved = %q, want /api/bulk_log", path)
	}
}

func TestResolver_NonNotFoundErrorSurfaces(t *testing.T) {
	serverErr := &StatusError{Code: 500, Body: "boom"}
	ft := &fakeTransport{responses: map[string]error{
		"/api/bulk_log": serverErr,
	}}
	r := NewResolver(ft, nil)

	err := r.Post(context.Background(), model.BulkLogPayload{})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 500 {
		t.Fatalf("expected the 500 to surface, got %v", err)
	}
	if _, ok := r.Resolved(); ok {
		t.Fatal("cache must not be committed on failure")
	}
	// The fallback must not have been attempted for a non-404 failure.
	if posts := ft.postedPaths(); len(posts) != 1 {
		t.Fatalf("posts = %v, want only the primary", posts)
	}
}

func TestResolver_CustomCandidates(t *testing.T) {
	ft := &fakeTransport{responses: map[string]error{"/a": &NotFoundError{}}}
	r := NewResolver(ft, []string{"/a", "/b"})

	if err := r.Post(context.Background(), model.BulkLogPayload{}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if path, _ := r.Resolved(); path != "/b" {
		t.Fatalf("resolved = %q, want /b", path)
	}
}
