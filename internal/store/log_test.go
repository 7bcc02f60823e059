package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cds/internal/model"
)

func team(id, name string) model.Team {
	return model.Team{TeamID: id, Name: name}
}

type replayed struct {
	key   string
	delta model.Delta
}

func replay(l *Log) []replayed {
	var out []replayed
	l.Iterate(func(obj model.Object, d model.Delta) {
		out = append(out, replayed{key: model.KeyOf(obj).String(), delta: d})
	})
	return out
}

func TestAdd_Classification(t *testing.T) {
	l := New()

	assert.Equal(t, model.ADD, l.Add(team("t1", "Alpha")))
	assert.Equal(t, model.NOOP, l.Add(team("t1", "Alpha")))
	assert.Equal(t, model.UPDATE, l.Add(team("t1", "Alpha Prime")))
	assert.Equal(t, model.DELETE, l.Add(model.Deletion{Of: model.KindTeam, ObjectID: "t1"}))
	assert.Equal(t, model.NOOP, l.Add(model.Deletion{Of: model.KindTeam, ObjectID: "t1"}))
	assert.Equal(t, model.NOOP, l.Add(nil))

	assert.Nil(t, l.Get(model.KindTeam, "t1"))
	assert.Equal(t, 3, l.Len(), "NOOPs are never recorded")
}

func TestAdd_SameIDDifferentKind(t *testing.T) {
	l := New()
	assert.Equal(t, model.ADD, l.Add(model.Problem{ProblemID: "x"}))
	assert.Equal(t, model.ADD, l.Add(model.Language{LanguageID: "x"}))
	assert.Equal(t, 1, l.Count(model.KindProblem))
	assert.Equal(t, 1, l.Count(model.KindLanguage))
}

func TestGet_ReturnsLatest(t *testing.T) {
	l := New()
	l.Add(team("t1", "Alpha"))
	l.Add(team("t1", "Beta"))

	got := l.Get(model.KindTeam, "t1")
	require.NotNil(t, got)
	assert.Equal(t, "Beta", got.(model.Team).Name)
	assert.Nil(t, l.Get(model.KindTeam, "missing"))
}

func TestByType_FirstArrivalOrder(t *testing.T) {
	l := New()
	l.Add(team("t2", "B"))
	l.Add(team("t1", "A"))
	l.Add(team("t3", "C"))
	l.Add(team("t2", "B2"))

	got := l.ByType(model.KindTeam)
	require.Len(t, got, 3)
	assert.Equal(t, "t2", got[0].ID())
	assert.Equal(t, "B2", got[0].(model.Team).Name)
	assert.Equal(t, "t1", got[1].ID())
	assert.Equal(t, "t3", got[2].ID())

	assert.Equal(t, 0, l.IndexOf(model.KindTeam, "t2"))
	assert.Equal(t, 2, l.IndexOf(model.KindTeam, "t3"))
	assert.Equal(t, -1, l.IndexOf(model.KindTeam, "t9"))
}

func TestByType_SnapshotIsolated(t *testing.T) {
	l := New()
	l.Add(team("t1", "A"))
	snap := l.ByType(model.KindTeam)
	l.Add(team("t2", "B"))

	assert.Len(t, snap, 1)
	assert.Len(t, l.ByType(model.KindTeam), 2)
}

func TestDelete_ReindexesPositions(t *testing.T) {
	l := New()
	l.Add(team("t1", "A"))
	l.Add(team("t2", "B"))
	l.Add(team("t3", "C"))
	l.Add(model.Deletion{Of: model.KindTeam, ObjectID: "t1"})

	assert.Equal(t, 0, l.IndexOf(model.KindTeam, "t2"))
	assert.Equal(t, 1, l.IndexOf(model.KindTeam, "t3"))
	assert.Equal(t, -1, l.IndexOf(model.KindTeam, "t1"))

	// re-adding a deleted identity is a new arrival
	assert.Equal(t, model.ADD, l.Add(team("t1", "A")))
	assert.Equal(t, 2, l.IndexOf(model.KindTeam, "t1"))
}

func TestIterate_ReplaysHistory(t *testing.T) {
	l := New()
	l.Add(team("t1", "A"))
	l.Add(model.Problem{ProblemID: "p1"})
	l.Add(team("t1", "A2"))
	l.Add(model.Deletion{Of: model.KindProblem, ObjectID: "p1"})

	assert.Equal(t, []replayed{
		{"teams/t1", model.ADD},
		{"problems/p1", model.ADD},
		{"teams/t1", model.UPDATE},
		{"problems/p1", model.DELETE},
	}, replay(l))
}

func TestWithoutHistory_KeepsOnlyCurrent(t *testing.T) {
	l := New(WithoutHistory())
	assert.False(t, l.KeepsHistory())

	l.Add(team("t1", "A"))
	l.Add(model.Problem{ProblemID: "p1"})
	l.Add(team("t2", "B"))
	assert.Equal(t, model.UPDATE, l.Add(team("t1", "A2")))
	assert.Equal(t, model.DELETE, l.Add(model.Deletion{Of: model.KindProblem, ObjectID: "p1"}))

	assert.Equal(t, []replayed{
		{"teams/t1", model.ADD},
		{"teams/t2", model.ADD},
	}, replay(l))
	assert.Equal(t, "A2", l.Get(model.KindTeam, "t1").(model.Team).Name)
	assert.Equal(t, "B", l.Get(model.KindTeam, "t2").(model.Team).Name)
}

func TestObjects_CurrentVersionOrder(t *testing.T) {
	l := New()
	l.Add(team("t1", "A"))
	l.Add(team("t2", "B"))
	l.Add(team("t1", "A2"))

	objs := l.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, "t2", objs[0].ID())
	assert.Equal(t, "A2", objs[1].(model.Team).Name)
}

func TestRemoveSince(t *testing.T) {
	l := New()
	l.Add(team("t1", "A"))
	mark := l.Len()
	l.Add(team("t2", "B"))
	l.Add(team("t1", "A2"))

	l.RemoveSince(mark)

	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "A", l.Get(model.KindTeam, "t1").(model.Team).Name)
	assert.Nil(t, l.Get(model.KindTeam, "t2"))

	l.RemoveSince(10)
	assert.Equal(t, 1, l.Len())
}

func TestRemoveFromHistory_ScrubsIdentity(t *testing.T) {
	l := New()
	l.Add(team("t1", "A"))
	l.Add(team("t2", "B"))
	l.Add(team("t1", "A2"))

	removed := l.RemoveFromHistory(team("t1", ""))
	assert.Equal(t, 2, removed)
	assert.Nil(t, l.Get(model.KindTeam, "t1"))
	assert.Equal(t, []replayed{{"teams/t2", model.ADD}}, replay(l))
	assert.Equal(t, 0, l.RemoveFromHistory())
}

func TestRemove_RevertsToPreviousVersion(t *testing.T) {
	l := New()
	l.Add(team("t1", "A"))
	l.Add(team("t1", "A2"))

	require.True(t, l.Remove(team("t1", "A2")))
	assert.Equal(t, "A", l.Get(model.KindTeam, "t1").(model.Team).Name)

	require.True(t, l.Remove(team("t1", "A")))
	assert.Nil(t, l.Get(model.KindTeam, "t1"))

	assert.False(t, l.Remove(team("t1", "A")))
	assert.Equal(t, 0, l.Len())
}

func TestRemove_RecomputesReplayDeltas(t *testing.T) {
	l := New()
	l.Add(team("t1", "A"))
	l.Add(team("t1", "A2"))
	l.Remove(team("t1", "A"))

	assert.Equal(t, []replayed{{"teams/t1", model.ADD}}, replay(l))
}
