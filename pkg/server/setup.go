package server

import (
	"log"
	"os"

	"github.com/gradio-app/trackio-go/pkg/config"
	"github.com/gradio-app/trackio-go/pkg/export"
	"github.com/gradio-app/trackio-go/pkg/ingest"
	"github.com/gradio-app/trackio-go/pkg/query"
	"github.com/gradio-app/trackio-go/pkg/storage"
	"github.com/gradio-app/trackio-go/pkg/storage/badger"
	"github.com/gradio-app/trackio-go/pkg/storage/memory"
)

// Config holds server configuration.
type Config struct {
	Port       string
	DataDir    string
	WriteToken string
	InMemory   bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() Config {
	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = config.DefaultPort
	}

	dataDir := os.Getenv(config.EnvDataDir)
	if dataDir == "" {
		dataDir = config.DefaultDataDir
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	return Config{
		Port:       port,
		DataDir:    dataDir,
		WriteToken: os.Getenv(config.EnvWriteToken),
	}
}

// InitializeStorage initializes the metrics store. BadgerDB backs the
// on-disk store; InMemory swaps in the map-backed store for tests.
func InitializeStorage(cfg Config) (storage.Storage, error) {
	if cfg.InMemory {
		return memory.New(), nil
	}

	log.Println("Initializing BadgerDB storage with Snappy compression...")
	store, err := badger.New(badger.Config{
		Path: cfg.DataDir,
	})
	if err != nil {
		return nil, err
	}
	log.Println("BadgerDB storage initialized successfully")
	return store, nil
}

// InitializeHandlers creates and configures all request handlers.
func InitializeHandlers(cfg Config, store storage.Storage) (*ingest.Handler, *query.Handler, *export.Handler, *ingest.Hub) {
	ingestHandler := ingest.NewHandler(store)
	if cfg.WriteToken != "" {
		ingestHandler.SetWriteToken(cfg.WriteToken)
		log.Println("Ingest handler created (write token required)")
	} else {
		log.Println("Ingest handler created (no write token, accepting all writers)")
	}

	queryHandler := query.NewHandler(store)
	log.Println("Query handler created")

	exportHandler := export.NewHandler(store)
	log.Println("Export/Import handler created (JSON & CSV run backups)")

	hub := ingest.NewHub()
	ingestHandler.SetHub(hub)
	log.Println("WebSocket hub created for live run streaming")

	return ingestHandler, queryHandler, exportHandler, hub
}
