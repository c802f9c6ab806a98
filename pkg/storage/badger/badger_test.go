package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gradio-app/trackio-go/pkg/storage"
)

func newTestStore(t *testing.T) *Storage {
	t.Helper()
	// In-memory mode keeps tests off the filesystem
	store, err := New(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func row(project, run string, step int, ts time.Time, loss float64) storage.Row {
	return storage.Row{
		Project:   project,
		Run:       run,
		Step:      step,
		Timestamp: ts,
		Metrics:   map[string]any{"loss": loss},
	}
}

func TestWriteBulkAndMetrics_TimestampOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Written out of order; the key layout sorts them on disk.
	require.NoError(t, store.WriteBulk(ctx, "demo", "run-1", []storage.Row{
		row("demo", "run-1", 1, base.Add(time.Second), 0.5),
	}))
	require.NoError(t, store.WriteBulk(ctx, "demo", "run-1", []storage.Row{
		row("demo", "run-1", 0, base, 0.9),
		row("demo", "run-1", 2, base.Add(2*time.Second), 0.2),
	}))

	got, err := store.Metrics(ctx, "demo", "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []int{0, 1, 2}, []int{got[0].Step, got[1].Step, got[2].Step})
	require.Equal(t, 0.9, got[0].Metrics["loss"])
	require.True(t, got[0].Timestamp.Equal(base))
}

func TestMetrics_RunsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.WriteBulk(ctx, "demo", "run-1", []storage.Row{row("demo", "run-1", 0, now, 1)}))
	require.NoError(t, store.WriteBulk(ctx, "demo", "run-2", []storage.Row{row("demo", "run-2", 0, now, 2)}))

	got, err := store.Metrics(ctx, "demo", "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "run-1", got[0].Run)
}

func TestProjectsAndRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.WriteBulk(ctx, "beta", "run-b", []storage.Row{row("beta", "run-b", 0, now, 1)}))
	require.NoError(t, store.WriteBulk(ctx, "alpha", "run-2", []storage.Row{row("alpha", "run-2", 0, now, 1)}))
	require.NoError(t, store.WriteBulk(ctx, "alpha", "run-1", []storage.Row{row("alpha", "run-1", 0, now, 1)}))

	projects, err := store.Projects(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta"}, projects)

	runs, err := store.Runs(ctx, "alpha")
	require.NoError(t, err)
	require.Equal(t, []string{"run-1", "run-2"}, runs)
}

func TestLastStep(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	last, err := store.LastStep(ctx, "demo", "run-1")
	require.NoError(t, err)
	require.Equal(t, -1, last)

	require.NoError(t, store.WriteBulk(ctx, "demo", "run-1", []storage.Row{
		row("demo", "run-1", 0, now, 1),
		row("demo", "run-1", 7, now, 1),
	}))

	last, err = store.LastStep(ctx, "demo", "run-1")
	require.NoError(t, err)
	require.Equal(t, 7, last)

	// The index never regresses when older steps arrive late.
	require.NoError(t, store.WriteBulk(ctx, "demo", "run-1", []storage.Row{
		row("demo", "run-1", 3, now, 1),
	}))
	last, err = store.LastStep(ctx, "demo", "run-1")
	require.NoError(t, err)
	require.Equal(t, 7, last)
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.WriteBulk(ctx, "demo", "run-1", []storage.Row{
		row("demo", "run-1", 0, base, 1),
		row("demo", "run-1", 1, base.Add(time.Minute), 1),
	}))
	require.NoError(t, store.WriteBulk(ctx, "demo", "run-2", []storage.Row{
		row("demo", "run-2", 0, base.Add(time.Hour), 1),
	}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.TotalRows)
	require.EqualValues(t, 2, stats.TotalRuns)
	require.True(t, stats.OldestRow.Equal(base))
	require.True(t, stats.NewestRow.Equal(base.Add(time.Hour)))
}

func TestWriteBulk_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.WriteBulk(ctx, "demo", "run-1", []storage.Row{row("demo", "run-1", 0, time.Now(), 1)})
	require.Error(t, err)
}
