/*
Package storage provides the pluggable storage abstraction for the trackio
dashboard server.

# Storage Interface

The server stores metric rows keyed by project and run. Two backends
implement the Storage interface:

  - memory: in-memory rows for tests and ephemeral dev servers
  - badger: BadgerDB (LSM tree + Snappy compression) for persistence

# Data Model

A Row is one measurement after ingest has resolved it: the step is always a
concrete integer (the server assigns the next sequential step when the client
sent the -1 sentinel) and the timestamp is always set (receipt time when the
client omitted it). Metrics is the client's opaque key/value map.

Rows for a run come back from Metrics() ordered by timestamp, then insertion
order, matching what the dashboard plots.

# Usage Example

	store, err := badger.New(badger.Config{Path: "./data/trackio"})
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	err = store.WriteBulk(ctx, "fashion-mnist", "resnet-baseline", rows)

	rows, err := store.Metrics(ctx, "fashion-mnist", "resnet-baseline")
	projects, err := store.Projects(ctx)
	runs, err := store.Runs(ctx, "fashion-mnist")

# Best Practices

 1. Always call Close() when done to flush pending writes
 2. Use context.WithTimeout() to bound queries
 3. Batch writes when possible (WriteBulk takes the whole submission)
*/
package storage
