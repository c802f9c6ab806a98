package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/gradio-app/trackio-go/pkg/storage"
)

// Key layout:
//
//	'm' + run_hash(8) + timestamp(8) + seq(8)  -> JSON row
//	'p' + project                              -> nil (project index)
//	'r' + project + 0x00 + run                 -> nil (run index)
//	's' + run_hash(8)                          -> last step (8 bytes)
//
// run_hash is xxhash of project + 0x00 + run, so all of a run's rows are one
// contiguous, timestamp-sorted prefix scan.
const (
	prefixRow     = 'm'
	prefixProject = 'p'
	prefixRun     = 'r'
	prefixStep    = 's'
)

// Storage implements storage.Storage using BadgerDB (LSM tree).
type Storage struct {
	db  *badger.DB
	seq atomic.Uint64
}

// Config holds BadgerDB configuration.
type Config struct {
	// Path to store database files
	Path string

	// InMemory mode (for testing)
	InMemory bool

	// MaxMemoryMB limits BadgerDB memory usage in MB (0 = laptop-friendly
	// defaults). Recommended: 64-128 MB for local dev.
	MaxMemoryMB int64
}

// New creates a BadgerDB storage backend.
func New(cfg Config) (*Storage, error) {
	opts := badger.DefaultOptions(cfg.Path)

	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	// BadgerDB defaults assume server hardware; a local dashboard shares a
	// laptop with a training job, so keep memory bounded.
	var memTableSize int64
	if cfg.MaxMemoryMB > 0 {
		memTableSize = cfg.MaxMemoryMB * 1024 * 1024 / 3
	} else {
		memTableSize = 16 * 1024 * 1024
	}

	opts = opts.
		WithCompression(options.Snappy).
		WithNumVersionsToKeep(1).
		WithMemTableSize(memTableSize).
		WithNumMemtables(3).
		WithBlockCacheSize(memTableSize / 2).
		WithIndexCacheSize(memTableSize / 4).
		WithMaxLevels(4).
		WithNumCompactors(2).
		WithValueThreshold(1024).
		WithValueLogFileSize(64 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	s := &Storage{db: db}
	// Seed the row sequence so keys stay unique across restarts even when
	// many rows share a timestamp.
	s.seq.Store(uint64(time.Now().UnixNano()))
	return s, nil
}

// WriteBulk stores one bulk submission's rows plus the index entries that
// make Projects/Runs/LastStep cheap.
func (s *Storage) WriteBulk(ctx context.Context, project, run string, rows []storage.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	hash := runHash(project, run)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(projectKey(project), nil); err != nil {
			return fmt.Errorf("failed to index project: %w", err)
		}
		if err := txn.Set(runKey(project, run), nil); err != nil {
			return fmt.Errorf("failed to index run: %w", err)
		}

		maxStep, err := s.lastStepTxn(txn, hash)
		if err != nil {
			return err
		}

		for i, row := range rows {
			// Check context periodically (every 100 rows)
			if i%100 == 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}

			value, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to encode row: %w", err)
			}
			if err := txn.Set(rowKey(hash, row.Timestamp, s.seq.Add(1)), value); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
			if row.Step > maxStep {
				maxStep = row.Step
			}
		}

		var stepVal [8]byte
		binary.BigEndian.PutUint64(stepVal[:], uint64(int64(maxStep)))
		return txn.Set(stepKey(hash), stepVal[:])
	})
}

// Metrics returns a run's rows, timestamp-ordered by key layout.
func (s *Storage) Metrics(ctx context.Context, project, run string) ([]storage.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := make([]byte, 9)
	prefix[0] = prefixRow
	binary.BigEndian.PutUint64(prefix[1:], runHash(project, run))

	var results []storage.Row
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		var iterCount int
		for it.Rewind(); it.Valid(); it.Next() {
			iterCount++
			// Check for cancellation every 1000 iterations so a huge run
			// cannot block shutdown.
			if iterCount%1000 == 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}

			err := it.Item().Value(func(val []byte) error {
				var row storage.Row
				if err := json.Unmarshal(val, &row); err != nil {
					return fmt.Errorf("failed to decode row: %w", err)
				}
				results = append(results, row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return results, err
}

// Projects lists indexed project names.
func (s *Storage) Projects(ctx context.Context) ([]string, error) {
	return s.scanStrings(ctx, []byte{prefixProject})
}

// Runs lists indexed run names within a project.
func (s *Storage) Runs(ctx context.Context, project string) ([]string, error) {
	prefix := append([]byte{prefixRun}, project...)
	prefix = append(prefix, 0)
	return s.scanStrings(ctx, prefix)
}

// LastStep returns the highest step recorded for a run, or -1.
func (s *Storage) LastStep(ctx context.Context, project, run string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	last := -1
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		last, err = s.lastStepTxn(txn, runHash(project, run))
		return err
	})
	return last, err
}

// Stats returns storage statistics.
func (s *Storage) Stats(ctx context.Context) (*storage.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := &storage.Stats{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		var iterCount int
		for it.Rewind(); it.Valid(); it.Next() {
			iterCount++
			if iterCount%1000 == 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}

			key := it.Item().Key()
			switch key[0] {
			case prefixRow:
				stats.TotalRows++
				ts := time.Unix(0, int64(binary.BigEndian.Uint64(key[9:17])))
				if stats.OldestRow.IsZero() || ts.Before(stats.OldestRow) {
					stats.OldestRow = ts
				}
				if stats.NewestRow.IsZero() || ts.After(stats.NewestRow) {
					stats.NewestRow = ts
				}
			case prefixRun:
				stats.TotalRuns++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	lsmSize, vlogSize := s.db.Size()
	stats.SizeBytes = uint64(lsmSize + vlogSize)
	return stats, nil
}

// Close shuts down BadgerDB, flushing pending writes.
func (s *Storage) Close() error {
	return s.db.Close()
}

// RunGC runs BadgerDB's value log garbage collection to reclaim disk space.
// discardRatio: run GC if this fraction of a file can be discarded.
func (s *Storage) RunGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}

func (s *Storage) scanStrings(ctx context.Context, prefix []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			results = append(results, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return results, err
}

func (s *Storage) lastStepTxn(txn *badger.Txn, hash uint64) (int, error) {
	item, err := txn.Get(stepKey(hash))
	if err == badger.ErrKeyNotFound {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read step index: %w", err)
	}

	last := -1
	err = item.Value(func(val []byte) error {
		last = int(int64(binary.BigEndian.Uint64(val)))
		return nil
	})
	return last, err
}

func runHash(project, run string) uint64 {
	h := xxhash.New()
	h.WriteString(project)
	h.Write([]byte{0})
	h.WriteString(run)
	return h.Sum64()
}

func rowKey(hash uint64, ts time.Time, seq uint64) []byte {
	key := make([]byte, 25)
	key[0] = prefixRow
	binary.BigEndian.PutUint64(key[1:9], hash)
	binary.BigEndian.PutUint64(key[9:17], uint64(ts.UnixNano()))
	binary.BigEndian.PutUint64(key[17:25], seq)
	return key
}

func projectKey(project string) []byte {
	return append([]byte{prefixProject}, project...)
}

func runKey(project, run string) []byte {
	key := append([]byte{prefixRun}, project...)
	key = append(key, 0)
	return append(key, run...)
}

func stepKey(hash uint64) []byte {
	key := make([]byte, 9)
	key[0] = prefixStep
	binary.BigEndian.PutUint64(key[1:], hash)
	return key
}
