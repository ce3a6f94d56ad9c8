// Package store provides SQLite-backed storage for simulation results.
//
// Each run gets a row in runs keyed by a UUIDv7, and every snapshot the
// run reports is stored with its per-location and per-phase rows:
//
//   - runs: model, seed, horizon, status, final clock and action count
//   - snapshots: one row per report (seq, simulated time, final flag)
//   - location_snapshots: occupancy and cumulative usage per location
//   - phase_counts: persons per phase
//
// Queries order by logical columns (seq, location_id, ordinal), never by
// wall time, so reads are identical across replays of the same seed.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
