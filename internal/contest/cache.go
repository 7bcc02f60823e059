package contest

import (
	"sync/atomic"

	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/ranking"
)

// cache holds the derived slots. A nil slot is dirty. Slots are written
// only with the contest's mu held; they may be read without it.
type cache struct {
	info  atomic.Pointer[model.Info]
	state atomic.Pointer[model.State]

	languages      atomic.Pointer[[]model.Language]
	judgementTypes atomic.Pointer[[]model.JudgementType]
	problems       atomic.Pointer[[]model.Problem]
	groups         atomic.Pointer[[]model.Group]
	organizations  atomic.Pointer[[]model.Organization]
	teams          atomic.Pointer[[]model.Team]
	members        atomic.Pointer[[]model.TeamMember]
	submissions    atomic.Pointer[[]model.Submission]
	judgements     atomic.Pointer[[]model.Judgement]
	runs           atomic.Pointer[[]model.Run]
	clarifications atomic.Pointer[[]model.Clarification]
	awards         atomic.Pointer[[]model.Award]
	pauses         atomic.Pointer[[]model.Pause]
	countdowns     atomic.Pointer[[]model.Countdown]

	groupByID       atomic.Pointer[map[string]model.Group]
	teamIndex       atomic.Pointer[map[string]int]
	submissionIndex atomic.Pointer[map[string]int]

	// status is the per-submission current verdict table.
	status atomic.Pointer[statusTable]

	ranking      atomic.Pointer[ranking.Output]
	orderedTeams atomic.Pointer[[]model.Team]
	recent       atomic.Pointer[[]*ranking.Recent]
}

// statusTable maps a submission index to its current judgement type. It is
// sized with headroom so new submissions can be covered without a rebuild.
type statusTable struct {
	types []atomic.Pointer[model.JudgementType]
}

const statusHeadroom = 100

func newStatusTable(numSubmissions int) *statusTable {
	return &statusTable{types: make([]atomic.Pointer[model.JudgementType], numSubmissions+statusHeadroom)}
}

func (t *statusTable) covers(i int) bool {
	return i >= 0 && i < len(t.types)
}

// clearRanking drops every ranking-derived slot.
func (cc *cache) clearRanking() {
	cc.ranking.Store(nil)
	cc.orderedTeams.Store(nil)
}

// clearAll drops every slot except info and state.
func (cc *cache) clearAll() {
	cc.languages.Store(nil)
	cc.judgementTypes.Store(nil)
	cc.problems.Store(nil)
	cc.groups.Store(nil)
	cc.organizations.Store(nil)
	cc.teams.Store(nil)
	cc.members.Store(nil)
	cc.submissions.Store(nil)
	cc.judgements.Store(nil)
	cc.runs.Store(nil)
	cc.clarifications.Store(nil)
	cc.awards.Store(nil)
	cc.pauses.Store(nil)
	cc.countdowns.Store(nil)
	cc.groupByID.Store(nil)
	cc.teamIndex.Store(nil)
	cc.submissionIndex.Store(nil)
	cc.status.Store(nil)
	cc.recent.Store(nil)
	cc.clearRanking()
}

// invalidate applies the invalidation rule for obj's kind after a change
// classified as delta. A nil obj invalidates everything and re-resolves the
// singletons. Called with mu held.
func (c *Contest) invalidate(obj model.Object, delta model.Delta) {
	cc := &c.cache
	if obj == nil {
		cc.clearAll()
		c.resolveInfo()
		c.resolveState()
		c.rebuildOrphans()
		return
	}

	switch obj.Kind() {
	case model.KindInfo:
		if info, ok := obj.(model.Info); ok && delta != model.DELETE {
			cc.info.Store(&info)
		} else {
			c.resolveInfo()
		}
		cc.clearRanking()
	case model.KindState:
		if state, ok := obj.(model.State); ok && delta != model.DELETE {
			cc.state.Store(&state)
		} else {
			c.resolveState()
		}
	case model.KindLanguage:
		cc.languages.Store(nil)
	case model.KindJudgementType:
		cc.judgementTypes.Store(nil)
		cc.status.Store(nil)
		cc.recent.Store(nil)
		cc.clearRanking()
	case model.KindProblem:
		cc.problems.Store(nil)
		cc.clearRanking()
	case model.KindGroup:
		cc.groups.Store(nil)
		cc.groupByID.Store(nil)
		cc.clearRanking()
	case model.KindOrganization:
		cc.organizations.Store(nil)
	case model.KindTeam:
		cc.teams.Store(nil)
		cc.teamIndex.Store(nil)
		cc.recent.Store(nil)
		cc.clearRanking()
	case model.KindTeamMember:
		cc.members.Store(nil)
	case model.KindSubmission:
		cc.submissions.Store(nil)
		cc.submissionIndex.Store(nil)
		cc.recent.Store(nil)
		cc.clearRanking()
		c.patchStatusForSubmission(obj, delta)
	case model.KindJudgement:
		cc.judgements.Store(nil)
		cc.recent.Store(nil)
		cc.clearRanking()
		c.patchStatusForJudgement(obj, delta)
	case model.KindRun:
		cc.runs.Store(nil)
	case model.KindClarification:
		cc.clarifications.Store(nil)
	case model.KindAward:
		cc.awards.Store(nil)
	case model.KindPause:
		cc.pauses.Store(nil)
	case model.KindCountdown:
		cc.countdowns.Store(nil)
	}
}

// patchStatusForSubmission keeps the verdict table across a new submission
// when the table already has room for it and no stored judgement is
// waiting on it. Any other submission change drops the table.
func (c *Contest) patchStatusForSubmission(obj model.Object, delta model.Delta) {
	id := obj.ID()
	_, orphaned := c.orphans[id]
	delete(c.orphans, id)
	if delta == model.DELETE {
		c.rebuildOrphans()
	}

	table := c.cache.status.Load()
	if table == nil {
		return
	}
	if delta != model.ADD || orphaned || !table.covers(c.log.IndexOf(model.KindSubmission, id)) {
		c.cache.status.Store(nil)
	}
}

// patchStatusForJudgement writes a new judgement's verdict into the table
// in place. Updates and deletes drop the table.
func (c *Contest) patchStatusForJudgement(obj model.Object, delta model.Delta) {
	j, isJudgement := obj.(model.Judgement)
	if isJudgement && delta != model.DELETE {
		if c.log.Get(model.KindSubmission, j.SubmissionID) == nil {
			c.orphans[j.SubmissionID] = struct{}{}
		}
	}

	table := c.cache.status.Load()
	if table == nil {
		return
	}
	if delta != model.ADD || !isJudgement {
		c.cache.status.Store(nil)
		return
	}
	jt, ok := c.log.Get(model.KindJudgementType, j.JudgementTypeID).(model.JudgementType)
	if !ok {
		return
	}
	i := c.log.IndexOf(model.KindSubmission, j.SubmissionID)
	if i < 0 {
		return
	}
	if !table.covers(i) {
		c.cache.status.Store(nil)
		return
	}
	table.types[i].Store(&jt)
}

// rebuildOrphans recomputes the set of submissions referenced by judgements
// while absent from the log.
func (c *Contest) rebuildOrphans() {
	clear(c.orphans)
	for _, obj := range c.log.ByType(model.KindJudgement) {
		j := obj.(model.Judgement)
		if c.log.Get(model.KindSubmission, j.SubmissionID) == nil {
			c.orphans[j.SubmissionID] = struct{}{}
		}
	}
}

// resolveInfo sets the info slot to the latest stored Info.
func (c *Contest) resolveInfo() {
	infos := c.log.ByType(model.KindInfo)
	if len(infos) == 0 {
		c.cache.info.Store(nil)
		return
	}
	info := infos[len(infos)-1].(model.Info)
	c.cache.info.Store(&info)
}

// resolveState sets the state slot to the latest stored State.
func (c *Contest) resolveState() {
	states := c.log.ByType(model.KindState)
	if len(states) == 0 {
		c.cache.state.Store(nil)
		return
	}
	state := states[len(states)-1].(model.State)
	c.cache.state.Store(&state)
}

// lazy returns the slot's value, rebuilding it under mu on a miss.
func lazy[T any](c *Contest, slot *atomic.Pointer[T], build func() T) T {
	if v := slot.Load(); v != nil {
		return *v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return lazyLocked(slot, build)
}

// lazyLocked is lazy for callers already holding mu.
func lazyLocked[T any](slot *atomic.Pointer[T], build func() T) T {
	if v := slot.Load(); v != nil {
		return *v
	}
	v := build()
	slot.Store(&v)
	return v
}

// byType converts the log's objects of kind to their concrete type.
func byType[T model.Object](c *Contest, kind model.Kind) []T {
	objs := c.log.ByType(kind)
	out := make([]T, 0, len(objs))
	for _, o := range objs {
		if v, ok := o.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
