// Package store provides SQLite-backed durable storage for scan progress.
//
// Two things are kept per database:
//   - Scan cursors: where the next full scan of a document resumes, keyed by
//     document and layout, together with the hash of the layout that produced
//     them
//   - Runs: an append-only log of validate invocations, each with the first
//     violation it reported (if any)
//
// # Ordering
//
// Runs and cursor updates carry a logical seq counter. Queries order by
// seq ASC, id ASC COLLATE BINARY and never by wall time, so history output is
// identical across machines.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
