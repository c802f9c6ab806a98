package config

import "time"

// Server defaults
const (
	DefaultPort    = "7860"
	DefaultDataDir = "./data/trackio"
)

// Client defaults
const (
	DefaultServerURL     = "http://127.0.0.1:7860"
	DefaultTimeout       = 5 * time.Second
	DefaultMaxBatch      = 128
	DefaultFlushInterval = 200 * time.Millisecond
)

// Recognized environment variables
const (
	EnvServerURL     = "TRACKIO_SERVER_URL"
	EnvProject       = "TRACKIO_PROJECT"
	EnvRun           = "TRACKIO_RUN"
	EnvWriteToken    = "TRACKIO_WRITE_TOKEN"
	EnvTimeoutMS     = "TRACKIO_TIMEOUT_MS"
	EnvMaxBatch      = "TRACKIO_MAX_BATCH"
	EnvFlushInterval = "TRACKIO_FLUSH_INTERVAL_MS"
	EnvPort          = "TRACKIO_PORT"
	EnvDataDir       = "TRACKIO_DATA_DIR"
)

// Ingest timeouts and limits
const (
	IngestTimeout  = 5 * time.Second
	IngestMaxItems = 10000
	QueryTimeout   = 10 * time.Second
)

// WebSocket configuration
const (
	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024
	WSBroadcastBuffer = 256
	WSChannelBuffer   = 10
	WSWriteDeadline   = 10 * time.Second
)
