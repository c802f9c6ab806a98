package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gradio-app/trackio-go/pkg/sdk/model"
)

// WriteTokenHeader carries the optional write credential on every POST.
const WriteTokenHeader = "X-Trackio-Write-Token"

// Transport sends one bulk payload to a single server path. Implementations
// classify the outcome but never retry; retry and fallback live in the
// resolver and batcher above this layer.
type Transport interface {
	Post(ctx context.Context, path string, payload model.BulkLogPayload) error
}

// HTTP implements Transport against a trackio dashboard server.
type HTTP struct {
	baseURL    string
	writeToken string
	client     *http.Client
}

// NewHTTP creates an HTTP transport for the given base URL. timeout bounds
// each request; writeToken may be empty.
func NewHTTP(baseURL, writeToken string, timeout time.Duration) *HTTP {
	return &HTTP{
		baseURL:    baseURL,
		writeToken: writeToken,
		client:     &http.Client{Timeout: timeout},
	}
}

// Post sends the payload to baseURL+path and maps the response:
// 2xx → nil, 404 → *NotFoundError, other non-2xx → *StatusError,
// connection failure → *TransportError.
func (t *HTTP) Post(ctx context.Context, path string, payload model.BulkLogPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.writeToken != "" {
		req.Header.Set(WriteTokenHeader, t.writeToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Body: string(respBody)}
	}
	return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
}
