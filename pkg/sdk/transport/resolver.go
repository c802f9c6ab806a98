package transport

import (
	"context"
	"sync"

	"github.com/gradio-app/trackio-go/pkg/sdk/model"
)

// DefaultCandidates are the bulk-submission paths tried in order: the REST
// route first, then the legacy gradio route.
var DefaultCandidates = []string{"/api/bulk_log", "/gradio_api/bulk_log"}

// Resolver discovers which candidate path the server accepts and caches it.
// The cache is committed only on a successful POST, so a failed resolution
// retries every candidate on the next flush. The POST that resolves the path
// also delivers its payload; the batch is never sent twice.
type Resolver struct {
	transport  Transport
	candidates []string

	mu       sync.Mutex
	resolved string
}

// NewResolver creates a resolver over the given transport. If candidates is
// empty, DefaultCandidates is used.
func NewResolver(t Transport, candidates []string) *Resolver {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &Resolver{transport: t, candidates: candidates}
}

// Post sends the payload to the resolved path, resolving it first if needed.
// During resolution a 404 advances to the next candidate; any other error is
// surfaced as-is. ErrNoBulkEndpoint is returned once every candidate has
// answered 404.
func (r *Resolver) Post(ctx context.Context, payload model.BulkLogPayload) error {
	if path, ok := r.path(); ok {
		return r.transport.Post(ctx, path, payload)
	}

	for _, candidate := range r.candidates {
		err := r.transport.Post(ctx, candidate, payload)
		if err == nil {
			r.commit(candidate)
			return nil
		}
		if IsNotFound(err) {
			continue
		}
		return err
	}
	return ErrNoBulkEndpoint
}

// Resolved returns the cached path, if resolution has succeeded.
func (r *Resolver) Resolved() (string, bool) {
	return r.path()
}

func (r *Resolver) path() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved, r.resolved != ""
}

func (r *Resolver) commit(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved == "" {
		r.resolved = path
	}
}
