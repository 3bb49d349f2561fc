// Package store is a SQLite catalog of dump files.
//
// Every dump written by a dump.Writer configured with WithIndex, or indexed
// later from a directory, becomes one row. The catalog answers which files
// exist for a call subject or match key without reading the files, e.g.
// to pick the files a replay scenario should register.
//
// # Ordering
//
// All listing queries order by timestamp, then filename COLLATE BINARY, so
// results are identical across runs for the same files.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Params are stored as canonical JSON and hashed with the same function
// the mock adapter uses for params-sensitive match keys.
package store
