// Package store provides SQLite-backed durable storage for the registry host.
//
// The store has two parts:
//   - Records: a key-value table with get/set semantics. The registry state
//     lives under a single key; there are no secondary indexes.
//   - Transaction log: an append-only record of every mutating call,
//     committed or rejected.
//
// # Atomicity
//
// Update runs a function inside one SQL transaction. A host call reads the
// state, writes it back and appends its log entry through the same *Tx, so
// either all of it is visible or none of it is.
//
// # Deterministic Reads
//
// Log queries always ORDER BY seq ASC. seq is the host's logical clock,
// never a wall-clock timestamp.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - One open connection: SQLite allows a single writer
package store
