// Package store loads dataset snapshots from, and delegates writes to, the
// relational database behind flock.
//
// Two drivers are supported through database/sql and sqlx:
//   - sqlite3: a local file, created and migrated on open
//   - pgx: the hosted Postgres database, whose schema is managed elsewhere
//
// Reads are full-table scans ordered by primary key, so a snapshot is
// deterministic for a given database state. Writes are single statements
// or single transactions; a failed write leaves nothing behind, and nothing
// is retried.
//
// # Database Configuration (sqlite3)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
