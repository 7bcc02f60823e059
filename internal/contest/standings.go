package contest

import (
	"fmt"

	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/ranking"
)

// groupMap returns the groups keyed by id.
func (c *Contest) groupMap() map[string]model.Group {
	return lazy(c, &c.cache.groupByID, c.buildGroupMap)
}

func (c *Contest) groupMapLocked() map[string]model.Group {
	return lazyLocked(&c.cache.groupByID, c.buildGroupMap)
}

func (c *Contest) buildGroupMap() map[string]model.Group {
	groups := lazyLocked(&c.cache.groups, c.buildGroups)
	m := make(map[string]model.Group, len(groups))
	for _, g := range groups {
		m[g.GroupID] = g
	}
	return m
}

// IsTeamHidden derives a team's visibility from its groups under the
// contest's hidden policy. Unknown group ids count as visible.
func (c *Contest) IsTeamHidden(t model.Team) bool {
	return teamHidden(t, c.groupMap(), c.hidden)
}

func teamHidden(t model.Team, groups map[string]model.Group, policy HiddenPolicy) bool {
	if len(t.GroupIDs) == 0 {
		return false
	}
	hidden := 0
	for _, id := range t.GroupIDs {
		if g, ok := groups[id]; ok && g.Hidden {
			hidden++
		}
	}
	if policy == AnyGroupHidden {
		return hidden > 0
	}
	return hidden == len(t.GroupIDs)
}

// JudgementType returns the current verdict of a submission, or nil while
// it is unjudged or unknown.
func (c *Contest) JudgementType(s model.Submission) *model.JudgementType {
	idx := c.cache.submissionIndex.Load()
	table := c.cache.status.Load()
	if idx != nil && table != nil {
		i, ok := (*idx)[s.SubmissionID]
		if !ok || !table.covers(i) {
			return nil
		}
		return table.types[i].Load()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.judgementTypeLocked(s.SubmissionID)
}

func (c *Contest) judgementTypeLocked(submissionID string) *model.JudgementType {
	idx := c.submissionIndexLocked()
	i, ok := idx[submissionID]
	if !ok {
		return nil
	}
	return c.statusLocked().types[i].Load()
}

func (c *Contest) submissionIndexLocked() map[string]int {
	return lazyLocked(&c.cache.submissionIndex, func() map[string]int {
		subs := c.submissionsLocked()
		idx := make(map[string]int, len(subs))
		for i, s := range subs {
			idx[s.SubmissionID] = i
		}
		return idx
	})
}

// statusLocked returns the verdict table, building it from the judgements
// in arrival order so the latest judgement of each submission wins.
func (c *Contest) statusLocked() *statusTable {
	if t := c.cache.status.Load(); t != nil {
		return t
	}
	idx := c.submissionIndexLocked()
	table := newStatusTable(len(idx))
	for _, j := range c.judgementsLocked() {
		jt, ok := c.log.Get(model.KindJudgementType, j.JudgementTypeID).(model.JudgementType)
		if !ok {
			continue
		}
		if i, ok := idx[j.SubmissionID]; ok {
			table.types[i].Store(&jt)
		}
	}
	c.cache.status.Store(table)
	return table
}

// Status returns Submitted, Failed or Solved for a submission.
func (c *Contest) Status(s model.Submission) model.Status {
	return statusOf(c.JudgementType(s))
}

func statusOf(jt *model.JudgementType) model.Status {
	switch {
	case jt == nil:
		return model.Submitted
	case jt.Solved:
		return model.Solved
	default:
		return model.Failed
	}
}

// IsJudged reports whether s has a verdict with a known judgement type.
func (c *Contest) IsJudged(s model.Submission) bool {
	return c.JudgementType(s) != nil
}

// IsSolved reports whether s is currently judged as solved.
func (c *Contest) IsSolved(s model.Submission) bool {
	return c.Status(s) == model.Solved
}

// rankingLocked returns the cached ranking output, computing it on a miss.
func (c *Contest) rankingLocked() *ranking.Output {
	if out := c.cache.ranking.Load(); out != nil {
		return out
	}
	info, _ := c.Info()
	teams := c.teamsLocked()
	groups := c.groupMapLocked()
	hidden := make([]bool, len(teams))
	for i, t := range teams {
		hidden[i] = teamHidden(t, groups, c.hidden)
	}
	out := ranking.Compute(ranking.Input{
		Duration:       info.Length,
		FreezeBoundary: info.FreezeBoundary(),
		PenaltyTime:    info.Penalty(),
		Mode:           c.Scoring(),
		Teams:          teams,
		Problems:       c.problemsLocked(),
		Hidden:         hidden,
		Submissions:    c.submissionsLocked(),
		Verdict: func(s model.Submission) *model.JudgementType {
			return c.judgementTypeLocked(s.SubmissionID)
		},
		Logger: c.logger,
	})
	c.cache.ranking.Store(out)
	return out
}

// Ranking returns the full ranking output. The value is shared and must
// not be modified.
func (c *Contest) Ranking() *ranking.Output {
	if out := c.cache.ranking.Load(); out != nil {
		return out
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rankingLocked()
}

// Standing returns a team's standing.
func (c *Contest) Standing(teamID string) (ranking.Standing, error) {
	ti := c.TeamIndex(teamID)
	out := c.Ranking()
	if ti < 0 || ti >= len(out.Standings) {
		return ranking.Standing{}, fmt.Errorf("standing %q: %w", teamID, ErrUnknownTeam)
	}
	return out.Standings[ti], nil
}

// Standings returns every team's standing, indexed like Teams().
func (c *Contest) Standings() []ranking.Standing {
	return c.Ranking().Standings
}

// Result returns the (team, problem) cell.
func (c *Contest) Result(teamID string, problemIndex int) (ranking.Result, error) {
	ti := c.TeamIndex(teamID)
	out := c.Ranking()
	if ti < 0 || ti >= len(out.Results) {
		return ranking.Result{}, fmt.Errorf("result %q: %w", teamID, ErrUnknownTeam)
	}
	row := out.Results[ti]
	if problemIndex < 0 || problemIndex >= len(row) {
		return ranking.Result{}, fmt.Errorf("result %q/%d: %w", teamID, problemIndex, ErrUnknownProblem)
	}
	return row[problemIndex], nil
}

// ProblemSummary returns the summary of the problem at problemIndex.
func (c *Contest) ProblemSummary(problemIndex int) (ranking.ProblemSummary, error) {
	out := c.Ranking()
	if problemIndex < 0 || problemIndex >= len(out.Summaries) {
		return ranking.ProblemSummary{}, fmt.Errorf("summary %d: %w", problemIndex, ErrUnknownProblem)
	}
	return out.Summaries[problemIndex], nil
}

// Order returns the visible team indices, best first. The slice is shared
// and must not be modified.
func (c *Contest) Order() []int {
	return c.Ranking().Order
}

// OrderedTeams returns the visible teams, best first.
func (c *Contest) OrderedTeams() []model.Team {
	return lazy(c, &c.cache.orderedTeams, func() []model.Team {
		teams := c.teamsLocked()
		order := c.rankingLocked().Order
		out := make([]model.Team, len(order))
		for i, ti := range order {
			out[i] = teams[ti]
		}
		return out
	})
}

// OrderOf returns a team's position in Order(), or -1 when the team is
// unknown or hidden.
func (c *Contest) OrderOf(teamID string) int {
	ti := c.TeamIndex(teamID)
	if ti < 0 {
		return -1
	}
	for pos, i := range c.Order() {
		if i == ti {
			return pos
		}
	}
	return -1
}

// IsFirstToSolve reports whether s is the first solve of its problem.
func (c *Contest) IsFirstToSolve(s model.Submission) bool {
	pi := c.ProblemIndex(s.ProblemID)
	fts := c.Ranking().FirstToSolve
	if pi < 0 || pi >= len(fts) {
		return false
	}
	return fts[pi].SubmissionID == s.SubmissionID
}

// Recent returns the team's most recent submission, or nil.
func (c *Contest) Recent(teamID string) *ranking.Recent {
	ti := c.TeamIndex(teamID)
	recent := lazy(c, &c.cache.recent, func() []*ranking.Recent {
		return ranking.RecentActivity(c.teamsLocked(), c.submissionsLocked(), func(s model.Submission) model.Status {
			return statusOf(c.judgementTypeLocked(s.SubmissionID))
		})
	})
	if ti < 0 || ti >= len(recent) {
		return nil
	}
	return recent[ti]
}
