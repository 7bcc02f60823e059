package publish

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cds/internal/contest"
	tu "github.com/roach88/cds/internal/testutil"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb, err := NewClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func scoredContest(t *testing.T) *contest.Contest {
	t.Helper()
	c := contest.New()
	tu.AddAll(c, tu.Setup()...)
	tu.AddAll(c,
		tu.Team("t1"), tu.Team("t2"), tu.Team("t3"),
		tu.Submission("s1", "t2", "A", 10),
		tu.Judgement("j1", "s1", "AC", 11),
		tu.Submission("s2", "t1", "A", 20),
		tu.Judgement("j2", "s2", "AC", 21),
		tu.Submission("s3", "t1", "B", 30),
		tu.Judgement("j3", "s3", "AC", 31),
	)
	return c
}

func TestKeyBuilder(t *testing.T) {
	kb := NewKeyBuilder("")
	assert.Equal(t, "cds:order", kb.Order())

	kb = NewKeyBuilder("wf2026")
	assert.Equal(t, "wf2026:standings", kb.Standings())
	assert.Equal(t, "wf2026:updated", kb.Updated())
}

func TestNewClient_Errors(t *testing.T) {
	_, err := NewClient(context.Background(), "invalid://url")
	assert.Error(t, err)
}

func TestPublish(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	ctx := context.Background()
	c := scoredContest(t)

	p := New(rdb, c, WithPrefix("test"))
	require.NoError(t, p.Publish(ctx))

	entries, err := Read(ctx, rdb, p.Keys())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "t1", entries[0].TeamID)
	assert.Equal(t, 2, entries[0].Solved)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "t2", entries[1].TeamID)
	assert.Equal(t, "t3", entries[2].TeamID)
	assert.Equal(t, "Team t3", entries[2].Name)

	updated, err := mr.Get("test:updated")
	require.NoError(t, err)
	assert.Equal(t, "1", updated)
	assert.Equal(t, int64(1), p.Seq())
}

func TestAttach_PublishesOnRankingChanges(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	ctx := context.Background()
	c := scoredContest(t)

	p := New(rdb, c)
	p.Attach(ctx)
	defer p.Detach()

	tu.AddAll(c,
		tu.Submission("s4", "t3", "A", 5),
		tu.Judgement("j4", "s4", "AC", 6),
		tu.Submission("s5", "t3", "B", 7),
		tu.Judgement("j5", "s5", "AC", 8),
	)
	require.NoError(t, p.Flush(ctx))
	seq := p.Seq()
	assert.GreaterOrEqual(t, seq, int64(1))
	assert.LessOrEqual(t, seq, int64(4), "bursts coalesce")

	entries, err := Read(ctx, rdb, p.Keys())
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "t3", entries[0].TeamID)

	// Runs do not touch the scoreboard.
	c.Add(tu.Run("r1", "j5", 1, 8))
	require.NoError(t, p.Flush(ctx))
	assert.Equal(t, seq, p.Seq())

	updated, err := mr.Get("cds:updated")
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(seq, 10), updated)
}

func TestAttach_DeliveryDoesNotWaitOnRedis(t *testing.T) {
	_, rdb := setupTestRedis(t)
	ctx := context.Background()
	c := scoredContest(t)

	p := New(rdb, c)
	p.Attach(ctx)
	defer p.Detach()

	// hold the publish lock as a stalled Redis round trip would
	p.mu.Lock()
	added := make(chan struct{})
	go func() {
		defer close(added)
		tu.AddAll(c,
			tu.Submission("s4", "t3", "A", 5),
			tu.Judgement("j4", "s4", "AC", 6),
		)
	}()
	select {
	case <-added:
	case <-time.After(2 * time.Second):
		p.mu.Unlock()
		t.Fatal("contest delivery blocked on the publisher")
	}
	p.mu.Unlock()

	require.NoError(t, p.Flush(ctx))
	entries, err := Read(ctx, rdb, p.Keys())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	st, err := c.Standing("t3")
	require.NoError(t, err)
	for _, e := range entries {
		if e.TeamID == "t3" {
			assert.Equal(t, st.Rank, e.Rank)
			assert.Equal(t, st.Solved, e.Solved)
		}
	}
}

func TestDetach_PublishesPendingChange(t *testing.T) {
	_, rdb := setupTestRedis(t)
	ctx := context.Background()
	c := scoredContest(t)

	p := New(rdb, c)
	p.Attach(ctx)
	c.Add(tu.Team("t4"))
	p.Detach()

	entries, err := Read(ctx, rdb, p.Keys())
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	seq := p.Seq()
	c.Add(tu.Team("t5"))
	assert.Equal(t, seq, p.Seq(), "detached publisher ignores changes")
}

func TestPublish_RemovesDeletedTeams(t *testing.T) {
	_, rdb := setupTestRedis(t)
	ctx := context.Background()
	c := scoredContest(t)
	p := New(rdb, c)
	require.NoError(t, p.Publish(ctx))

	c.Add(tu.Team("t3", "hidden"))
	c.Add(tu.Group("hidden", true))
	require.NoError(t, p.Publish(ctx))

	entries, err := Read(ctx, rdb, p.Keys())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPublish_ErrorWhenRedisDown(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	p := New(rdb, scoredContest(t))
	mr.Close()

	err := p.Publish(context.Background())
	assert.Error(t, err)
	assert.Zero(t, p.Seq())
}
