package journal

import (
	"bytes"
	"context"
	"fmt"

	"github.com/roach88/cds/internal/feed"
	"github.com/roach88/cds/internal/model"
)

// Append stores one accepted event and returns its sequence number.
// NOOP deltas are not journaled.
func (j *Journal) Append(ctx context.Context, session string, obj model.Object, delta model.Delta) (int64, error) {
	if delta == model.NOOP {
		return 0, nil
	}
	var payload bytes.Buffer
	if err := feed.Encode(&payload, obj); err != nil {
		return 0, fmt.Errorf("append %s: %w", model.KeyOf(obj), err)
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO events (session, kind, object_id, op, payload)
		VALUES (?, ?, ?, ?, ?)
	`,
		session,
		obj.Kind().String(),
		obj.ID(),
		delta.String(),
		string(bytes.TrimRight(payload.Bytes(), "\n")),
	)
	if err != nil {
		return 0, fmt.Errorf("append %s: %w", model.KeyOf(obj), err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append %s: %w", model.KeyOf(obj), err)
	}
	return seq, nil
}
