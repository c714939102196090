// Package sqlite provides the SQLite-backed deduplication store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single table records the content hash
// of every item surfaced by a previous run:
//
//   - seen_items: content_hash (primary key), title, category, first_seen_at
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory as forward-only NNN_name.up.sql files.
// Applied versions are recorded in schema_migrations.
//
// # Durability
//
// The database runs in WAL mode with synchronous=FULL, so every insert and
// delete is on disk before the call returns.
//
// # Data Location
//
// By default, the database is stored at ~/.marketbrief/data/seen.db
package sqlite
