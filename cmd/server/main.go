package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/gradio-app/trackio-go/pkg/server"
)

const (
	serverReadTimeout  = 10 * time.Second
	serverWriteTimeout = 10 * time.Second
	shutdownTimeout    = 30 * time.Second
)

func main() {
	log.Println("🚀 Starting Trackio Server...")

	cfg := server.LoadConfig()
	log.Printf("📁 Data directory: %s", cfg.DataDir)

	store, err := server.InitializeStorage(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	defer store.Close()

	ingestHandler, queryHandler, exportHandler, hub := server.InitializeHandlers(cfg, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	log.Println("📡 WebSocket hub started for live run streaming")

	// BadgerDB garbage collection (reclaims disk space)
	wg.Add(1)
	go func() {
		defer wg.Done()
		server.RunBadgerGC(ctx, store)
	}()

	router := mux.NewRouter()
	server.SetupRoutes(router, ingestHandler, queryHandler, exportHandler, hub, cfg.Port)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	go func() {
		log.Printf("🌐 Server starting on http://localhost:%s", cfg.Port)
		log.Println("📡 API endpoints:")
		log.Println("   POST /api/bulk_log        - Submit metrics in bulk")
		log.Println("   POST /gradio_api/bulk_log - Submit metrics (Gradio-mounted path)")
		log.Println("   GET  /api/projects        - List projects")
		log.Println("   GET  /api/runs            - List runs in a project")
		log.Println("   GET  /api/metrics         - Fetch metrics for a run")
		log.Println("   GET  /api/stats           - Storage statistics")
		log.Println("   GET  /api/ws              - Live run updates (WebSocket)")
		log.Println("   GET  /api/export          - Download a run as JSON or CSV")
		log.Println("   POST /api/import          - Restore a JSON run backup")
		log.Println("✅ Server ready to accept requests")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutdown signal received...")

	// Cancel before wg.Wait() or the hub and GC goroutines never exit.
	log.Println("⏸️  Stopping background tasks...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	log.Println("🔄 Gracefully shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Server shutdown warning: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("✅ All background tasks stopped cleanly")
	case <-time.After(5 * time.Second):
		log.Println("⚠️  Some background tasks did not stop in time (forcing exit)")
	}

	log.Println("👋 Trackio server exited cleanly")
}
