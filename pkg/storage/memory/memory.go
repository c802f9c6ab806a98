package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gradio-app/trackio-go/pkg/storage"
)

type runKey struct {
	project string
	run     string
}

// Storage stores rows in memory. Data is lost on restart.
// Useful for testing and development.
type Storage struct {
	runs map[runKey][]storage.Row
	mu   sync.RWMutex
}

// New creates an in-memory storage backend.
func New() *Storage {
	return &Storage{
		runs: make(map[runKey][]storage.Row),
	}
}

// WriteBulk appends rows for a project/run.
func (s *Storage) WriteBulk(ctx context.Context, project, run string, rows []storage.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := runKey{project, run}
	s.runs[key] = append(s.runs[key], rows...)
	return nil
}

// Metrics returns a run's rows ordered by timestamp; insertion order breaks
// ties.
func (s *Storage) Metrics(ctx context.Context, project, run string) ([]storage.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.runs[runKey{project, run}]
	results := make([]storage.Row, len(stored))
	copy(results, stored)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.Before(results[j].Timestamp)
	})
	return results, nil
}

// Projects lists known project names, sorted.
func (s *Storage) Projects(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var projects []string
	for key := range s.runs {
		if !seen[key.project] {
			seen[key.project] = true
			projects = append(projects, key.project)
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// Runs lists run names within a project, sorted.
func (s *Storage) Runs(ctx context.Context, project string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []string
	for key := range s.runs {
		if key.project == project {
			runs = append(runs, key.run)
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// LastStep returns the highest step for a run, or -1 when the run is empty.
func (s *Storage) LastStep(ctx context.Context, project, run string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	last := -1
	for _, row := range s.runs[runKey{project, run}] {
		if row.Step > last {
			last = row.Step
		}
	}
	return last, nil
}

// Stats returns storage statistics.
func (s *Storage) Stats(ctx context.Context) (*storage.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &storage.Stats{TotalRuns: uint64(len(s.runs))}
	for _, rows := range s.runs {
		for _, row := range rows {
			stats.TotalRows++
			if stats.OldestRow.IsZero() || row.Timestamp.Before(stats.OldestRow) {
				stats.OldestRow = row.Timestamp
			}
			if stats.NewestRow.IsZero() || row.Timestamp.After(stats.NewestRow) {
				stats.NewestRow = row.Timestamp
			}
		}
	}
	return stats, nil
}

// Close is a no-op for the memory backend.
func (s *Storage) Close() error {
	return nil
}
