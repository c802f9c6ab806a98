package batch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gradio-app/trackio-go/pkg/sdk/model"
)

// Sender delivers one drained batch. The client wires this to the endpoint
// resolver; tests substitute a mock.
type Sender interface {
	Send(ctx context.Context, items []model.LogItem) error
}

// Config holds configuration for the batcher.
type Config struct {
	// MaxBatch triggers an inline flush when the buffer reaches this size.
	MaxBatch int

	// FlushInterval is the background timer period.
	FlushInterval time.Duration

	// OnError is invoked when an auto-flush or timer flush drops a batch.
	// Defaults to log.Printf. Errors from explicit Flush calls are returned
	// to the caller instead.
	OnError func(error)
}

// Batcher buffers log items and flushes them as one bulk send when the buffer
// reaches MaxBatch, when the background timer fires, or on demand. A failed
// flush drops its batch; delivery is best-effort.
type Batcher struct {
	config Config
	sender Sender

	mu  sync.Mutex
	buf []model.LogItem

	// sendMu serializes flushes so the timer, threshold and manual paths
	// never interleave sends. Never held together with mu: the buffer is
	// drained under mu, the network call happens under sendMu only.
	sendMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a batcher. Call Start to run the background timer.
func New(sender Sender, config Config) *Batcher {
	if config.MaxBatch < 1 {
		config.MaxBatch = 1
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 200 * time.Millisecond
	}
	if config.OnError == nil {
		config.OnError = func(err error) {
			log.Printf("trackio: dropped batch: %v", err)
		}
	}
	return &Batcher{
		config: config,
		sender: sender,
		buf:    make([]model.LogItem, 0, config.MaxBatch),
		done:   make(chan struct{}),
	}
}

// Start launches the background timer goroutine.
func (b *Batcher) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)

	go b.flushLoop()
	return nil
}

// Add appends an item to the pending buffer. When the buffer reaches
// MaxBatch an inline flush is triggered with the buffer lock released, so
// concurrent Adds land in the fresh buffer while the send is in flight.
// A failed auto-flush is reported through OnError and otherwise swallowed:
// logging never fails the caller.
func (b *Batcher) Add(item model.LogItem) {
	b.mu.Lock()
	b.buf = append(b.buf, item)
	shouldFlush := len(b.buf) >= b.config.MaxBatch
	b.mu.Unlock()

	if shouldFlush {
		if err := b.Flush(context.Background()); err != nil {
			b.config.OnError(err)
		}
	}
}

// Flush drains the buffer and sends its contents as one bulk request,
// returning the send's outcome. An empty buffer is a no-op success with no
// network call. The drained batch is not requeued on failure.
func (b *Batcher) Flush(ctx context.Context) error {
	b.sendMu.Lock()
	defer b.sendMu.Unlock()

	b.mu.Lock()
	items := b.buf
	b.buf = make([]model.LogItem, 0, b.config.MaxBatch)
	b.mu.Unlock()

	if len(items) == 0 {
		return nil
	}
	return b.sender.Send(ctx, items)
}

// Stop shuts down the timer goroutine and performs one final flush.
func (b *Batcher) Stop() error {
	if b.cancel != nil {
		b.cancel()
		<-b.done
	}
	return b.Flush(context.Background())
}

// Len returns the number of pending items.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// flushLoop drives the periodic flush until Stop or context cancellation.
func (b *Batcher) flushLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			if err := b.Flush(b.ctx); err != nil {
				b.config.OnError(err)
			}
		}
	}
}
