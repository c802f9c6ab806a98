package export

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gradio-app/trackio-go/pkg/httpx"
	"github.com/gradio-app/trackio-go/pkg/storage"
)

// Handler handles export/import HTTP endpoints.
type Handler struct {
	exporter *Exporter
	importer *Importer
}

// NewHandler creates a new export/import handler.
func NewHandler(store storage.Storage) *Handler {
	return &Handler{
		exporter: NewExporter(store),
		importer: NewImporter(store),
	}
}

// HandleExport handles GET /api/export.
// Query params:
//   - project: project name (required)
//   - run: run name (required)
//   - format: "json" or "csv" (default: json)
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	project := query.Get("project")
	run := query.Get("run")
	if project == "" || run == "" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "project and run parameters are required")
		return
	}

	format := query.Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "invalid format, must be 'json' or 'csv'")
		return
	}

	timestamp := time.Now().Format("20060102-150405")
	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=trackio-%s-%s-%s.json", project, run, timestamp))
	} else {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=trackio-%s-%s-%s.csv", project, run, timestamp))
	}

	ctx := r.Context()
	var result *ExportResult
	var err error
	if format == "json" {
		result, err = h.exporter.ExportToJSON(ctx, w, project, run)
	} else {
		result, err = h.exporter.ExportToCSV(ctx, w, project, run)
	}
	if err != nil {
		log.Printf("Export failed: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	log.Printf("Exported %d rows (%s) for %s/%s", result.RowsExported, format, project, run)
}

// HandleImport handles POST /api/import. Accepts JSON backups produced by
// HandleExport and writes their rows back into storage.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if contentType != "application/json" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}

	result, err := h.importer.ImportFromJSON(r.Context(), r.Body)
	if err != nil {
		log.Printf("Import failed: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	if len(result.Errors) > 0 {
		log.Printf("Import completed with %d validation errors", len(result.Errors))
	}
	log.Printf("Imported %d rows in %d batches into %s/%s", result.RowsImported, result.BatchesWritten, result.Project, result.Run)

	httpx.RespondJSON(w, http.StatusOK, result)
}
