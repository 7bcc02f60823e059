package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/cds/internal/feed"
	"github.com/roach88/cds/internal/model"
)

// Event is one journaled row.
type Event struct {
	Seq      int64
	Session  string
	Kind     string
	ObjectID string
	Op       string
	Payload  string
}

// Object decodes the stored payload.
func (e Event) Object() (model.Object, error) {
	obj, err := feed.Decode([]byte(e.Payload))
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", e.Seq, err)
	}
	return obj, nil
}

// Session summarizes one recording session.
type Session struct {
	ID        string
	ContestID string
	StartedAt string
	Events    int64
	FirstSeq  int64
	LastSeq   int64
}

// Events returns the events of session in seq order. An empty session
// selects every event in the journal.
func (j *Journal) Events(ctx context.Context, session string) ([]Event, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if session == "" {
		rows, err = j.db.QueryContext(ctx, `
			SELECT seq, session, kind, object_id, op, payload
			FROM events
			ORDER BY seq ASC
		`)
	} else {
		rows, err = j.db.QueryContext(ctx, `
			SELECT seq, session, kind, object_id, op, payload
			FROM events
			WHERE session = ?
			ORDER BY seq ASC
		`, session)
	}
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Session, &e.Kind, &e.ObjectID, &e.Op, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return out, nil
}

// History returns every journaled version of one object in seq order.
func (j *Journal) History(ctx context.Context, kind model.Kind, id string) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, session, kind, object_id, op, payload
		FROM events
		WHERE kind = ? AND object_id = ?
		ORDER BY seq ASC
	`, kind.String(), id)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Session, &e.Kind, &e.ObjectID, &e.Op, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return out, nil
}

// Sessions lists the recording sessions in start order.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.contest_id, s.started_at,
		       COUNT(e.seq), COALESCE(MIN(e.seq), 0), COALESCE(MAX(e.seq), 0)
		FROM sessions s
		LEFT JOIN events e ON e.session = s.id
		GROUP BY s.id
		ORDER BY s.rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.ContestID, &s.StartedAt, &s.Events, &s.FirstSeq, &s.LastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	return out, nil
}
