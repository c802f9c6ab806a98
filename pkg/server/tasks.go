package server

import (
	"context"
	"log"
	"time"

	"github.com/gradio-app/trackio-go/pkg/storage"
	"github.com/gradio-app/trackio-go/pkg/storage/badger"
)

const gcInterval = 10 * time.Minute

// RunBadgerGC runs BadgerDB garbage collection periodically to reclaim disk
// space. Badger's value log accumulates stale versions until GC rewrites it.
func RunBadgerGC(ctx context.Context, store storage.Storage) {
	badgerStore, ok := store.(*badger.Storage)
	if !ok {
		log.Println("Storage is not BadgerDB, skipping GC")
		return
	}

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	log.Printf("BadgerDB GC scheduler started (runs every %v)", gcInterval)

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			// Reclaim a value log file once half of it is garbage.
			if err := badgerStore.RunGC(0.5); err != nil {
				// Badger returns an error when nothing needed rewriting.
				log.Printf("GC completed in %v (no rewrite needed)", time.Since(start).Round(time.Millisecond))
			} else {
				log.Printf("GC completed in %v (disk space reclaimed)", time.Since(start).Round(time.Millisecond))
			}
		case <-ctx.Done():
			log.Println("Stopping BadgerDB GC scheduler")
			return
		}
	}
}
