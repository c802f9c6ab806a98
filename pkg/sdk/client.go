package sdk

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gradio-app/trackio-go/pkg/config"
	"github.com/gradio-app/trackio-go/pkg/sdk/batch"
	"github.com/gradio-app/trackio-go/pkg/sdk/model"
	"github.com/gradio-app/trackio-go/pkg/sdk/transport"
)

// ClientConfig holds configuration for the trackio client. Zero-valued
// fields fall back to environment variables, then to defaults; the resulting
// configuration is immutable for the client's lifetime.
type ClientConfig struct {
	// BaseURL of the dashboard server. Env: TRACKIO_SERVER_URL.
	BaseURL string

	// Project name. Required (via field or TRACKIO_PROJECT).
	Project string

	// Run name. Env: TRACKIO_RUN; auto-generated when unset.
	Run string

	// WriteToken, when set, is attached to every POST. Env: TRACKIO_WRITE_TOKEN.
	WriteToken string

	// Timeout bounds each HTTP request. Env: TRACKIO_TIMEOUT_MS.
	Timeout time.Duration

	// MaxBatch triggers an auto-flush when the buffer reaches this size.
	// Env: TRACKIO_MAX_BATCH.
	MaxBatch int

	// FlushInterval is the background flush period. Env: TRACKIO_FLUSH_INTERVAL_MS.
	FlushInterval time.Duration

	// OnError, when set, receives errors from dropped background batches.
	// Defaults to logging via the standard logger.
	OnError func(error)

	// Transport overrides the HTTP transport. Mostly for tests.
	Transport transport.Transport
}

// Client is the trackio SDK client. It buffers Log calls and ships them to
// the dashboard server as bulk submissions.
type Client struct {
	config   ClientConfig
	resolver *transport.Resolver
	batcher  *batch.Batcher
}

// New creates a client and starts its background flush timer. Callers must
// Close the client before exiting or a partially filled buffer is lost.
func New(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = getenv(config.EnvServerURL, config.DefaultServerURL)
	}
	if cfg.Project == "" {
		cfg.Project = os.Getenv(config.EnvProject)
	}
	if cfg.Project == "" {
		return nil, fmt.Errorf("project name is required")
	}
	if cfg.Run == "" {
		cfg.Run = os.Getenv(config.EnvRun)
	}
	if cfg.Run == "" {
		cfg.Run = fmt.Sprintf("run-%d", time.Now().Unix())
	}
	if cfg.WriteToken == "" {
		cfg.WriteToken = os.Getenv(config.EnvWriteToken)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Duration(getenvInt(config.EnvTimeoutMS, int(config.DefaultTimeout/time.Millisecond))) * time.Millisecond
	}
	if cfg.MaxBatch == 0 {
		cfg.MaxBatch = getenvInt(config.EnvMaxBatch, config.DefaultMaxBatch)
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = time.Duration(getenvInt(config.EnvFlushInterval, int(config.DefaultFlushInterval/time.Millisecond))) * time.Millisecond
	}

	trans := cfg.Transport
	if trans == nil {
		trans = transport.NewHTTP(cfg.BaseURL, cfg.WriteToken, cfg.Timeout)
	}

	client := &Client{
		config:   cfg,
		resolver: transport.NewResolver(trans, nil),
	}
	client.batcher = batch.New(client, batch.Config{
		MaxBatch:      cfg.MaxBatch,
		FlushInterval: cfg.FlushInterval,
		OnError:       cfg.OnError,
	})
	client.batcher.Start(context.Background())

	return client, nil
}

// Log buffers one measurement. step and ts may be zero ("unset"); the server
// fills in a sequential step and a receipt timestamp. Log never blocks on
// network I/O and never fails the caller.
func (c *Client) Log(metrics map[string]any, step *int, ts string) {
	c.batcher.Add(model.LogItem{Metrics: metrics, Step: step, Timestamp: ts})
}

// Flush drains the buffer and sends it as one bulk submission, surfacing the
// outcome. A failed flush drops its batch; callers needing delivery retry by
// re-logging.
func (c *Client) Flush(ctx context.Context) error {
	return c.batcher.Flush(ctx)
}

// Close stops the background timer and flushes outstanding logs.
// Safe to use as `defer client.Close()`.
func (c *Client) Close() error {
	return c.batcher.Stop()
}

// Project returns the configured project name.
func (c *Client) Project() string { return c.config.Project }

// Run returns the run name, including an auto-generated one.
func (c *Client) Run() string { return c.config.Run }

// Send implements batch.Sender: it assembles the bulk payload from a drained
// batch and posts it through the endpoint resolver.
func (c *Client) Send(ctx context.Context, items []model.LogItem) error {
	payload := model.NewBulkLogPayload(c.config.Project, c.config.Run, items)
	return c.resolver.Post(ctx, payload)
}

// getenv gets a string from the environment or returns the default.
func getenv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getenvInt gets an int from the environment or returns the default.
func getenvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		log.Printf("Invalid value for %s: %q, using default %d", key, v, defaultValue)
	}
	return defaultValue
}
