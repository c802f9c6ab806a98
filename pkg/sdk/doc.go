/*
Package sdk provides the trackio client library for logging experiment
metrics to a local or remote trackio dashboard.

# Quick Start

Install:

	go get github.com/gradio-app/trackio-go

Log metrics from a training loop:

	package main

	import (
	    "context"
	    "log"

	    "github.com/gradio-app/trackio-go/pkg/sdk"
	)

	func main() {
	    client, err := sdk.New(sdk.ClientConfig{
	        Project: "fashion-mnist",
	        Run:     "resnet-baseline",
	    })
	    if err != nil {
	        log.Fatal(err)
	    }
	    defer client.Close()

	    for step := 0; step < 1000; step++ {
	        s := step
	        client.Log(map[string]any{
	            "loss":     train(),
	            "accuracy": evaluate(),
	        }, &s, "")
	    }

	    // Close flushes whatever is still buffered.
	}

# Batching & Flushing

Log calls never hit the network directly. Items are buffered in memory and
shipped as one bulk submission when:

 1. The buffer reaches MaxBatch (default: 128 items), OR
 2. FlushInterval elapses (default: 200ms), OR
 3. You call client.Flush() manually.

Delivery is best-effort: a batch whose send fails is dropped, not requeued.
Log and the background timer swallow send errors (reported through the
optional OnError hook) so instrumentation never crashes the host process.
Explicit Flush and Close calls return the outcome; call them when you need
to know the data arrived:

	if err := client.Flush(ctx); err != nil {
	    log.Printf("metrics not delivered: %v", err)
	}

# Endpoint Discovery

The client works against both the modern REST route (/api/bulk_log) and the
legacy gradio route (/gradio_api/bulk_log). The first successful POST decides
which one the server speaks, and that path is cached for the lifetime of the
client. If neither route exists the flush fails with
transport.ErrNoBulkEndpoint and discovery is retried on the next flush.

# Configuration

Every ClientConfig field falls back to an environment variable, then to a
default:

	BaseURL        TRACKIO_SERVER_URL         http://127.0.0.1:7860
	Project        TRACKIO_PROJECT            (required)
	Run            TRACKIO_RUN                auto-generated
	WriteToken     TRACKIO_WRITE_TOKEN        (none)
	Timeout        TRACKIO_TIMEOUT_MS         5000
	MaxBatch       TRACKIO_MAX_BATCH          128
	FlushInterval  TRACKIO_FLUSH_INTERVAL_MS  200

WriteToken, when present, is sent as the X-Trackio-Write-Token header on
every POST; servers started with a token reject submissions without it.

# Error Handling

Flush returns typed errors from pkg/sdk/transport:

  - *transport.TransportError: connection or timeout failure
  - *transport.NotFoundError: 404 with the response body
  - *transport.StatusError: any other non-2xx status, with code and body
  - transport.ErrNoBulkEndpoint: no candidate route accepted the submission

The SDK never retries on its own; retry policy belongs to the caller.

# Concurrency

A single Client is safe for concurrent use from any number of goroutines.
Buffer mutation is mutex-guarded and network I/O always happens outside the
buffer lock, so Log calls are never stalled behind a slow server.

# See Also

  - pkg/sdk/batch for the buffering and flush-trigger logic
  - pkg/sdk/transport for the wire protocol and error taxonomy
  - pkg/sdk/runtime for the optional Go runtime stats collector
  - cmd/server for the bundled dashboard server
*/
package sdk
