package journal

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
)

// SessionIDGenerator produces recording session ids.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids, so sessions
// sort by creation time.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7. It panics if the random source
// fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids in order.
//
// Thread-safety: safe for concurrent use.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator returns a generator yielding ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next id. It panics when the ids are exhausted.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Recorder is a contest listener appending every change to a journal.
type Recorder struct {
	journal *Journal
	session string
	logger  *slog.Logger

	mu      sync.Mutex
	lastSeq int64
}

// NewRecorder starts a new session in j. Attach the result with
// Contest.AddListener or Contest.AddListenerFromStart.
func NewRecorder(ctx context.Context, j *Journal, gen SessionIDGenerator, contestID string, logger *slog.Logger) (*Recorder, error) {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	session := gen.Generate()
	if err := j.StartSession(ctx, session, contestID); err != nil {
		return nil, err
	}
	logger.Info("journal session started", "session", session, "contest_id", contestID)
	return &Recorder{journal: j, session: session, logger: logger}, nil
}

// Session returns the session id events are recorded under.
func (r *Recorder) Session() string {
	return r.session
}

// LastSeq returns the seq of the last appended event.
func (r *Recorder) LastSeq() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSeq
}

// ContestChanged implements contest.Listener. A failed append is returned
// to the contest, which logs and counts it.
func (r *Recorder) ContestChanged(_ *contest.Contest, obj model.Object, delta model.Delta) error {
	seq, err := r.journal.Append(context.Background(), r.session, obj, delta)
	if err != nil {
		return err
	}
	r.mu.Lock()
	if seq > r.lastSeq {
		r.lastSeq = seq
	}
	r.mu.Unlock()
	return nil
}
