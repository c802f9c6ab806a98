package runtime

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingLogger struct {
	mu    sync.Mutex
	calls []map[string]any
}

func (r *recordingLogger) Log(metrics map[string]any, step *int, ts string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, metrics)
}

func (r *recordingLogger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestCollector_LogsSnapshotOnStart(t *testing.T) {
	logger := &recordingLogger{}
	c := NewCollector(logger, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for logger.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if logger.count() == 0 {
		t.Fatal("collector never logged a snapshot")
	}

	logger.mu.Lock()
	snapshot := logger.calls[0]
	logger.mu.Unlock()

	for _, key := range []string{"system/goroutines", "system/memory_heap_bytes", "system/gc_count"} {
		if _, ok := snapshot[key]; !ok {
			t.Errorf("snapshot missing %s", key)
		}
	}
}

func TestNewCollector_DefaultInterval(t *testing.T) {
	c := NewCollector(&recordingLogger{}, 0)
	if c.interval != 15*time.Second {
		t.Errorf("interval = %v, want 15s", c.interval)
	}
}
