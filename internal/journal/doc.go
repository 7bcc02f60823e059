// Package journal persists the accepted events of a contest in SQLite and
// replays them.
//
// A Recorder is a contest listener: every add that changed the contest is
// appended as one row, tagged with the recording session. Replay feeds the
// stored rows back through Contest.Add in sequence order, which rebuilds
// the same contest state.
//
// Payloads are stored as feed lines, so a journal can also be exported
// with feed.Encode semantics.
package journal
