// Package runtime logs Go runtime stats (goroutines, heap, GC) to a trackio
// run alongside the user's own metrics, the way the Python client logs
// system and GPU stats.
package runtime

import (
	"context"
	"runtime"
	"time"
)

// Logger is the slice of the SDK client the collector needs.
type Logger interface {
	Log(metrics map[string]any, step *int, ts string)
}

// Collector periodically logs Go runtime metrics under system/ keys.
type Collector struct {
	client   Logger
	interval time.Duration
}

// NewCollector creates a runtime metrics collector.
func NewCollector(client Logger, interval time.Duration) *Collector {
	if interval == 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		client:   client,
		interval: interval,
	}
}

// Start collects runtime metrics until the context is cancelled. Run it in
// its own goroutine; it blocks.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Collect immediately on start
	c.collect()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// collect gathers one runtime snapshot and logs it as a single item.
func (c *Collector) collect() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	metrics := map[string]any{
		"system/goroutines":         runtime.NumGoroutine(),
		"system/cpu_count":          runtime.NumCPU(),
		"system/memory_heap_bytes":  m.HeapAlloc,
		"system/memory_stack_bytes": m.StackInuse,
		"system/memory_sys_bytes":   m.Sys,
		"system/gc_count":           m.NumGC,
	}
	if m.NumGC > 0 {
		metrics["system/gc_pause_seconds"] = float64(m.PauseTotalNs) / 1e9
	}

	c.client.Log(metrics, nil, time.Now().UTC().Format(time.RFC3339))
}
