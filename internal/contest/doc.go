// Package contest is the queryable, observable contest state.
//
// A Contest wraps the in-memory event log with derived caches, change
// notification and the administrative purge operations.
//
// # Write Path
//
// Add is the sole ingestion entrypoint. Modifiers run first (outside any
// lock) and may rewrite or veto the object. The log then classifies the
// object under the contest's exclusive section; a NOOP returns immediately
// with no invalidation and no notification. Otherwise the kind's
// invalidation rule runs, a delivery ticket is drawn from the logical clock,
// and the section is released before observers are notified.
//
// # Caches
//
// Every derived value lives in its own atomic slot. A nil slot is dirty.
// Reads that hit a populated slot never lock. A miss takes the exclusive
// section, rebuilds the slot from the log and publishes it. Ranking-derived
// values (results, summaries, standings, order, first-to-solve) come from a
// single ranking pass and are always replaced together.
//
// The per-submission verdict table is the one exception to wholesale
// rebuilds: a new judgement patches its submission's entry in place when
// the table already covers that submission.
//
// # Notification
//
// Observers are called synchronously in registration order, outside the
// exclusive section. Tickets keep deliveries in mutation order even when
// several goroutines add concurrently. A panicking or failing observer is
// logged and counted; delivery continues with the next observer.
//
// Observers may call any read method. They must not call Add on the contest
// that is notifying them: that Add would wait for its own ticket behind the
// delivery in progress.
package contest
