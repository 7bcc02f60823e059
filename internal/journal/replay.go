package journal

import (
	"context"
	"fmt"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
)

// Replay adds the events of session (every session when empty) to c in
// seq order and returns how many changed c.
//
// A Recorder attached to c would journal the replayed events again; attach
// it after replaying.
func (j *Journal) Replay(ctx context.Context, c *contest.Contest, session string) (int, error) {
	events, err := j.Events(ctx, session)
	if err != nil {
		return 0, fmt.Errorf("replay: %w", err)
	}

	applied := 0
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		obj, err := e.Object()
		if err != nil {
			return applied, fmt.Errorf("replay: %w", err)
		}
		if c.Add(obj) != model.NOOP {
			applied++
		}
	}
	return applied, nil
}
