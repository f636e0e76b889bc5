// Package sqlite provides a SQLite-based run history store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It records one row per
// pipeline run plus one row per processed document, for local audit only;
// the pipeline never consults history to decide what to process.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.ditele/data/history.db
package sqlite
