package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
	tu "github.com/roach88/cds/internal/testutil"
)

func openTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j, path
}

func TestOpen_CreatesDatabase(t *testing.T) {
	_, path := openTestJournal(t)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 3; i++ {
		j, err := Open(path)
		require.NoError(t, err, "open %d", i)
		require.NoError(t, j.Close())
	}

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()
	for _, table := range []string{"sessions", "events"} {
		var name string
		err := j.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %q", table)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	j, _ := openTestJournal(t)
	assert.NoError(t, j.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, j.verifyPragma("synchronous", "1"))
	assert.NoError(t, j.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, j.verifyPragma("user_version", "1"))
}

func TestAppend_RequiresSession(t *testing.T) {
	j, _ := openTestJournal(t)
	_, err := j.Append(context.Background(), "nope", tu.Team("t1"), model.ADD)
	assert.Error(t, err)
}

func TestAppend_SkipsNoop(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.StartSession(ctx, "s", "c"))

	seq, err := j.Append(ctx, "s", tu.Team("t1"), model.NOOP)
	require.NoError(t, err)
	assert.Zero(t, seq)

	events, err := j.Events(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecorder_RecordsAndReplays(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()

	rec, err := NewRecorder(ctx, j, NewFixedGenerator("session-1"), "test", nil)
	require.NoError(t, err)
	assert.Equal(t, "session-1", rec.Session())

	live := contest.New()
	sub := live.AddListener(rec)
	tu.AddAll(live, tu.Setup()...)
	tu.AddAll(live,
		tu.Team("t1"), tu.Team("t2"),
		tu.Submission("s1", "t1", "A", 10),
		tu.Judgement("j1", "s1", "WA", 11),
		tu.Submission("s2", "t1", "A", 30),
		tu.Judgement("j2", "s2", "AC", 31),
		tu.Team("t2"),
		model.Deletion{Of: model.KindTeam, ObjectID: "t2"},
	)
	assert.Zero(t, live.ListenerFailures(sub))

	events, err := j.Events(ctx, "session-1")
	require.NoError(t, err)
	// 6 setup objects, 6 changes, one delete; the repeated team is a NOOP.
	require.Len(t, events, 13)
	assert.Equal(t, events[len(events)-1].Seq, rec.LastSeq())
	last := events[len(events)-1]
	assert.Equal(t, "teams", last.Kind)
	assert.Equal(t, "t2", last.ObjectID)
	assert.Equal(t, "delete", last.Op)

	replayed := contest.New()
	n, err := j.Replay(ctx, replayed, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	want, err := live.Standing("t1")
	require.NoError(t, err)
	got, err := replayed.Standing("t1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, replayed.Teams(), 1)
}

func TestSessions(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()
	gen := NewFixedGenerator("a", "b")

	for i := 0; i < 2; i++ {
		rec, err := NewRecorder(ctx, j, gen, "wf", nil)
		require.NoError(t, err)
		c := contest.New()
		c.AddListener(rec)
		for k := 0; k <= i; k++ {
			c.Add(tu.Team(string(rune('x' + k))))
		}
	}

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, "wf", sessions[0].ContestID)
	assert.Equal(t, int64(1), sessions[0].Events)
	assert.Equal(t, "b", sessions[1].ID)
	assert.Equal(t, int64(2), sessions[1].Events)
	assert.Equal(t, sessions[1].FirstSeq+1, sessions[1].LastSeq)

	all, err := j.Events(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHistory(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()
	rec, err := NewRecorder(ctx, j, NewFixedGenerator("s"), "", nil)
	require.NoError(t, err)

	c := contest.New()
	c.AddListener(rec)
	c.Add(model.Team{TeamID: "t1", Name: "Old"})
	c.Add(model.Team{TeamID: "t1", Name: "New"})
	c.Add(tu.Team("t2"))

	history, err := j.History(ctx, model.KindTeam, "t1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "add", history[0].Op)
	assert.Equal(t, "update", history[1].Op)

	obj, err := history[1].Object()
	require.NoError(t, err)
	assert.Equal(t, "New", obj.(model.Team).Name)
}

func TestUUIDv7Generator(t *testing.T) {
	a := UUIDv7Generator{}.Generate()
	b := UUIDv7Generator{}.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedGenerator("only")
	assert.Equal(t, "only", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
