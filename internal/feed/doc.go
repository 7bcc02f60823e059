// Package feed reads and writes the newline-delimited JSON event feed and
// drives a contest from it.
//
// Each line is one event:
//
//	{"type":"submissions","id":"s1","data":{"id":"s1","team_id":"t1",...}}
//
// A null data member, or "op":"delete", is a deletion of that identity.
//
// The Ingester is the single writer of a contest: events are queued from
// any goroutine and applied in FIFO order by one Run loop.
package feed
