// Package ranking derives scoreboard data from a contest snapshot.
//
// Compute is a pure function: it takes an immutable snapshot of teams,
// problems and submissions plus a verdict lookup, and returns the complete
// results grid, per-problem summaries, per-team standings, first-to-solve
// markers and the visible rank order in a single pass. Running it twice on
// the same input yields equal output.
//
// # Scoring Modes
//
//   - Interim: verdicts on submissions at or after the freeze boundary are
//     treated as not yet known, so the scoreboard reflects the freeze.
//   - Official: every verdict counts. Used once the contest is finalized.
//
// Both modes share the per-cell computation; the mode only decides which
// verdicts are visible to it.
//
// # Ordering
//
// Visible teams are ordered by solved count (descending), total penalty
// (ascending), time of last solve (ascending) and finally by team position
// in the input. Hidden teams receive standings but no rank.
package ranking
