package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gradio-app/trackio-go/pkg/config"
	"github.com/gradio-app/trackio-go/pkg/httpx"
	"github.com/gradio-app/trackio-go/pkg/sdk/model"
	"github.com/gradio-app/trackio-go/pkg/sdk/transport"
	"github.com/gradio-app/trackio-go/pkg/storage"
)

// MaxItemsPerRequest caps one bulk submission.
const MaxItemsPerRequest = config.IngestMaxItems

// Handler accepts bulk submissions on both the REST route and the legacy
// gradio route.
type Handler struct {
	store      storage.Storage
	hub        *Hub
	writeToken string

	// Serializes step assignment: two concurrent submissions for the same
	// run must not both read the same last step.
	mu sync.Mutex
}

// NewHandler creates an ingest handler over the given storage.
func NewHandler(store storage.Storage) *Handler {
	return &Handler{store: store}
}

// SetWriteToken makes the handler reject submissions whose
// X-Trackio-Write-Token header does not match tok. Empty disables the check.
func (h *Handler) SetWriteToken(tok string) {
	h.writeToken = tok
}

// SetHub attaches a WebSocket hub; accepted rows are broadcast to it.
func (h *Handler) SetHub(hub *Hub) {
	h.hub = hub
}

// BulkLogResponse is the success payload.
type BulkLogResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// HandleBulkLog handles POST /api/bulk_log and /gradio_api/bulk_log.
func (h *Handler) HandleBulkLog(w http.ResponseWriter, r *http.Request) {
	if h.writeToken != "" && r.Header.Get(transport.WriteTokenHeader) != h.writeToken {
		httpx.RespondErrorString(w, http.StatusUnauthorized, "invalid or missing write token")
		return
	}

	var req model.BulkLogPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondErrorString(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	if req.Project == "" || req.Run == "" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "project and run are required")
		return
	}
	if !req.Aligned() {
		httpx.RespondErrorString(w, http.StatusBadRequest,
			fmt.Sprintf("misaligned payload: metrics_list=%d steps=%d timestamps=%d",
				len(req.MetricsList), len(req.Steps), len(req.Timestamps)))
		return
	}
	if req.Len() > MaxItemsPerRequest {
		httpx.RespondErrorString(w, http.StatusBadRequest,
			fmt.Sprintf("too many items: %d (max %d)", req.Len(), MaxItemsPerRequest))
		return
	}
	if req.Len() == 0 {
		httpx.RespondJSON(w, http.StatusOK, BulkLogResponse{OK: true, Count: 0})
		return
	}

	timestamps, err := parseTimestamps(req.Timestamps)
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.IngestTimeout)
	defer cancel()

	rows, err := h.resolveAndWrite(ctx, &req, timestamps)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastRows(req.Project, req.Run, rows)
	}

	httpx.RespondJSON(w, http.StatusOK, BulkLogResponse{OK: true, Count: len(rows)})
}

// parseTimestamps converts the wire timestamps up front so a malformed one
// is rejected before anything is written. An empty string stays the zero
// time ("assign receipt time").
func parseTimestamps(raw []string) ([]time.Time, error) {
	out := make([]time.Time, len(raw))
	for i, s := range raw {
		if s == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			// Python clients send naive ISO 8601 without a zone offset.
			parsed, err = time.Parse("2006-01-02T15:04:05.999999999", s)
		}
		if err != nil {
			return nil, fmt.Errorf("bad timestamp at index %d: %w", i, err)
		}
		out[i] = parsed
	}
	return out, nil
}

// resolveAndWrite fills in unset steps and timestamps the way the reference
// server does: an unset step becomes the next sequential step for the run,
// an unset timestamp becomes receipt time.
func (h *Handler) resolveAndWrite(ctx context.Context, req *model.BulkLogPayload, timestamps []time.Time) ([]storage.Row, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	last, err := h.store.LastStep(ctx, req.Project, req.Run)
	if err != nil {
		return nil, fmt.Errorf("failed to read last step: %w", err)
	}
	next := last + 1
	now := time.Now().UTC()

	rows := make([]storage.Row, 0, req.Len())
	for i, metrics := range req.MetricsList {
		step := req.Steps[i]
		if step == model.StepUnset {
			step = next
			next++
		} else if step >= next {
			next = step + 1
		}

		ts := timestamps[i]
		if ts.IsZero() {
			ts = now
		}

		if metrics == nil {
			metrics = map[string]any{}
		}
		rows = append(rows, storage.Row{
			Project:   req.Project,
			Run:       req.Run,
			Step:      step,
			Timestamp: ts,
			Metrics:   metrics,
		})
	}

	if err := h.store.WriteBulk(ctx, req.Project, req.Run, rows); err != nil {
		return nil, fmt.Errorf("failed to write rows: %w", err)
	}
	return rows, nil
}
