package query

import (
	"context"
	"net/http"

	"github.com/gradio-app/trackio-go/pkg/config"
	"github.com/gradio-app/trackio-go/pkg/httpx"
	"github.com/gradio-app/trackio-go/pkg/storage"
)

// Handler serves stored projects, runs and metrics back to the dashboard.
type Handler struct {
	store storage.Storage
}

// NewHandler creates a query handler over the given storage.
func NewHandler(store storage.Storage) *Handler {
	return &Handler{store: store}
}

// ProjectsResponse is the payload for /api/projects.
type ProjectsResponse struct {
	Projects []string `json:"projects"`
}

// RunsResponse is the payload for /api/runs.
type RunsResponse struct {
	Project string   `json:"project"`
	Runs    []string `json:"runs"`
}

// MetricsResponse is the payload for /api/metrics. Each entry is the logged
// metrics map with "step" and "timestamp" merged in, the shape the reference
// dashboard plots from.
type MetricsResponse struct {
	Project string           `json:"project"`
	Run     string           `json:"run"`
	Metrics []map[string]any `json:"metrics"`
}

// HandleProjects handles GET /api/projects.
func (h *Handler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), config.QueryTimeout)
	defer cancel()

	projects, err := h.store.Projects(ctx)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	if projects == nil {
		projects = []string{}
	}
	httpx.RespondJSON(w, http.StatusOK, ProjectsResponse{Projects: projects})
}

// HandleRuns handles GET /api/runs?project=NAME.
func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "project parameter is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.QueryTimeout)
	defer cancel()

	runs, err := h.store.Runs(ctx, project)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []string{}
	}
	httpx.RespondJSON(w, http.StatusOK, RunsResponse{Project: project, Runs: runs})
}

// HandleMetrics handles GET /api/metrics?project=NAME&run=NAME.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	run := r.URL.Query().Get("run")
	if project == "" || run == "" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "project and run parameters are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.QueryTimeout)
	defer cancel()

	rows, err := h.store.Metrics(ctx, project, run)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	metrics := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		entry := make(map[string]any, len(row.Metrics)+2)
		for k, v := range row.Metrics {
			entry[k] = v
		}
		entry["step"] = row.Step
		entry["timestamp"] = row.Timestamp
		metrics = append(metrics, entry)
	}
	httpx.RespondJSON(w, http.StatusOK, MetricsResponse{Project: project, Run: run, Metrics: metrics})
}

// HandleStats handles GET /api/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), config.QueryTimeout)
	defer cancel()

	stats, err := h.store.Stats(ctx)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, stats)
}
