// Package store provides the in-memory event log behind a contest.
//
// The log is append-biased: every accepted add is kept in arrival order so a
// late observer can be replayed the full history before live events. Objects
// are keyed by (kind, id); re-adding an identity replaces its current value.
//
// # Classification
//
// Add compares the incoming object against the current value for its key:
//   - NOOP: an identical value is already current (canonical JSON equality)
//   - ADD: the key was absent
//   - UPDATE: the key was present with a different value
//   - DELETE: a tombstone removed the current value
//
// NOOPs are never recorded.
//
// # History
//
// By default the log keeps history: superseded versions and tombstones stay
// in the replay log. WithoutHistory keeps only current values; an update then
// replaces the old entry in place and a delete drops it.
//
// # Concurrency
//
// Log is not safe for concurrent use. The owning contest serializes writers
// and recomputation behind its own lock.
package store
