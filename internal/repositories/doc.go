// Package repositories implements SQLite persistence for crawl bookkeeping.
//
// Key Implementations:
//   - [RunRepository] : history of crawl, year-end and enrichment runs with status tracking
//   - [SnapshotStore] : whole-table checkpoints of observations and track records, keyed by checkpoint name
//
// Snapshots mirror the CSV checkpoint contract: every save replaces the stored table in a single transaction,
// so a crash leaves either the previous or the new table, never a mix.
package repositories
