// Package store provides SQLite-backed durable storage for character
// records and settled-pass snapshots.
//
// Characters are the only durable mutable input to evaluation; variable
// state is always recomputed, so only its per-pass snapshots are kept,
// and only for audit and regression comparison. Writes are idempotent:
// character saves upsert on id, snapshot saves use
// ON CONFLICT(character_id, pass_token) DO NOTHING.
//
// Ordering uses updated_seq / seq integer counters, never wall time, so
// listings are deterministic across machines and replays.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: snapshots cascade with their character
package store
