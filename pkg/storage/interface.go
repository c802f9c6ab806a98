package storage

import (
	"context"
	"time"
)

// Row is one stored measurement, fully resolved: the server has already
// assigned a step and timestamp if the client omitted them.
type Row struct {
	Project   string         `json:"project"`
	Run       string         `json:"run"`
	Step      int            `json:"step"`
	Timestamp time.Time      `json:"timestamp"`
	Metrics   map[string]any `json:"metrics"`
}

// Storage defines the interface for run-metric storage backends.
// Implementations: memory (testing/dev), badger (persistent).
type Storage interface {
	// WriteBulk stores one bulk submission's rows for a project/run.
	WriteBulk(ctx context.Context, project, run string, rows []Row) error

	// Metrics returns all rows for a run, ordered by timestamp then
	// insertion order.
	Metrics(ctx context.Context, project, run string) ([]Row, error)

	// Projects lists known project names, sorted.
	Projects(ctx context.Context) ([]string, error)

	// Runs lists run names within a project, sorted.
	Runs(ctx context.Context, project string) ([]string, error)

	// LastStep returns the highest step logged for a run, or -1 when the
	// run has no rows. Used to continue sequential step assignment.
	LastStep(ctx context.Context, project, run string) (int, error)

	// Stats returns storage statistics.
	Stats(ctx context.Context) (*Stats, error)

	// Close cleanly shuts down the storage.
	Close() error
}

// Stats provides storage health and usage info.
type Stats struct {
	// Total rows stored
	TotalRows uint64

	// Unique project/run pairs
	TotalRuns uint64

	// Storage size in bytes (0 for backends without a disk footprint)
	SizeBytes uint64

	// Oldest row timestamp
	OldestRow time.Time

	// Newest row timestamp
	NewestRow time.Time
}
