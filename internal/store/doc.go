// Package store provides the SQLite-backed local replica of the event log
// and the name cache.
//
// The replica is one more endpoint: it implements source.Source and
// source.Sink, so the engine can fan out to it alongside any other replica
// and publish freshly signed events into it.
//
// # Critical Patterns
//
// Idempotent append
//   - INSERT ... ON CONFLICT(id) DO NOTHING
//   - Publishing an event twice leaves one row and returns no error
//
// Deterministic reads
//   - Fetch orders by created_at DESC, id COLLATE BINARY ASC
//   - Limit keeps the newest events, the same rule every Source follows
//
// No validation
//   - The store persists what it is given. Callers validate before
//     publishing and again after fetching.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - One open connection: writes to events and names are serialized
package store
