package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gradio-app/trackio-go/pkg/export"
	"github.com/gradio-app/trackio-go/pkg/httpx"
	"github.com/gradio-app/trackio-go/pkg/ingest"
	"github.com/gradio-app/trackio-go/pkg/query"
)

var startTime = time.Now()

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// handleHealth returns service health status.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: "1.0.0",
		Uptime:  time.Since(startTime).String(),
	}
	httpx.RespondJSON(w, http.StatusOK, response)
}

// SetupRoutes configures all HTTP routes for the server.
func SetupRoutes(
	router *mux.Router,
	ingestHandler *ingest.Handler,
	queryHandler *query.Handler,
	exportHandler *export.Handler,
	hub *ingest.Hub,
	port string,
) {
	// CORS middleware for browser dashboards
	router.Use(corsMiddleware(port))

	// Bulk ingestion. Clients probe /api/bulk_log first and fall back to
	// the Gradio-mounted path, so the server answers on both.
	router.HandleFunc("/api/bulk_log", ingestHandler.HandleBulkLog).Methods("POST")
	router.HandleFunc("/gradio_api/bulk_log", ingestHandler.HandleBulkLog).Methods("POST")

	// Query endpoints
	router.HandleFunc("/api/projects", queryHandler.HandleProjects).Methods("GET")
	router.HandleFunc("/api/runs", queryHandler.HandleRuns).Methods("GET")
	router.HandleFunc("/api/metrics", queryHandler.HandleMetrics).Methods("GET")
	router.HandleFunc("/api/stats", queryHandler.HandleStats).Methods("GET")
	router.HandleFunc("/api/health", handleHealth).Methods("GET")

	// WebSocket for live run updates
	router.HandleFunc("/api/ws", ingestHandler.HandleWebSocket(hub)).Methods("GET")

	// Run backup and restore
	router.HandleFunc("/api/export", exportHandler.HandleExport).Methods("GET")
	router.HandleFunc("/api/import", exportHandler.HandleImport).Methods("POST")
}

// corsMiddleware creates CORS middleware that restricts to localhost origins only.
func corsMiddleware(port string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowedOrigins := []string{
				"http://localhost:" + port,
				"http://127.0.0.1:" + port,
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			}

			allowed := false
			for _, allowedOrigin := range allowedOrigins {
				if origin == allowedOrigin {
					allowed = true
					break
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Trackio-Write-Token")
			}

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
