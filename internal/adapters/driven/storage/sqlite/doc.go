// Package sqlite provides a SQLite-based implementation of driven.GraphStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Graph documents are stored as JSON alongside the columns needed for listing.
//
// # Data Location
//
// By default, the database is stored at ~/.neuralmap/data/graphs.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
