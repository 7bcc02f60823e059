package contest

import (
	"fmt"

	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/ranking"
)

// submissionTreeLocked appends a submission with its judgements and their
// runs to victims.
func (c *Contest) submissionTreeLocked(victims []model.Object, s model.Submission) []model.Object {
	for _, j := range c.judgementsLocked() {
		if j.SubmissionID != s.SubmissionID {
			continue
		}
		for _, obj := range c.log.ByType(model.KindRun) {
			if r := obj.(model.Run); r.JudgementID == j.JudgementID {
				victims = append(victims, r)
			}
		}
		victims = append(victims, j)
	}
	return append(victims, s)
}

// purgeLocked scrubs victims from the log and invalidates every cache.
func (c *Contest) purgeLocked(victims []model.Object) int {
	if len(victims) == 0 {
		return 0
	}
	c.log.RemoveFromHistory(victims...)
	c.invalidate(nil, model.DELETE)
	return len(victims)
}

// RemoveHiddenTeams scrubs hidden teams together with their members,
// submissions (and those submissions' judgements and runs) and
// clarifications to or from them. It returns the number of objects
// removed. Observers are not notified.
func (c *Contest) RemoveHiddenTeams() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	groups := c.groupMapLocked()
	hidden := make(map[string]bool)
	var victims []model.Object
	for _, t := range c.teamsLocked() {
		if teamHidden(t, groups, c.hidden) {
			hidden[t.TeamID] = true
			victims = append(victims, t)
		}
	}
	if len(hidden) == 0 {
		return 0
	}
	for _, obj := range c.log.ByType(model.KindTeamMember) {
		if m := obj.(model.TeamMember); hidden[m.TeamID] {
			victims = append(victims, m)
		}
	}
	for _, s := range c.submissionsLocked() {
		if hidden[s.TeamID] {
			victims = c.submissionTreeLocked(victims, s)
		}
	}
	for _, obj := range c.log.ByType(model.KindClarification) {
		clar := obj.(model.Clarification)
		if hidden[clar.FromTeamID] || hidden[clar.ToTeamID] {
			victims = append(victims, clar)
		}
	}

	c.logger.Info("removing hidden teams", "teams", len(hidden), "objects", len(victims))
	return c.purgeLocked(victims)
}

// RemoveSubmissionsOutsideContestTime scrubs submissions whose contest time
// is unknown, negative, or at or after the contest duration, with their
// judgements and runs. It returns the number of objects removed.
func (c *Contest) RemoveSubmissionsOutsideContestTime() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := c.Duration()
	var victims []model.Object
	for _, s := range c.submissionsLocked() {
		if !ranking.InWindow(s.ContestTime, duration) {
			victims = c.submissionTreeLocked(victims, s)
		}
	}
	c.logger.Info("removing invalid submissions", "objects", len(victims))
	return c.purgeLocked(victims)
}

// RemoveUnjudgedSubmissions scrubs submissions without a verdict, with
// their judgements and runs. It returns the number of objects removed.
func (c *Contest) RemoveUnjudgedSubmissions() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var victims []model.Object
	for _, s := range c.submissionsLocked() {
		if c.judgementTypeLocked(s.SubmissionID) == nil {
			victims = c.submissionTreeLocked(victims, s)
		}
	}
	c.logger.Info("removing unjudged submissions", "objects", len(victims))
	return c.purgeLocked(victims)
}

// Filter maps an object to the object a clone should receive, or nil to
// drop it.
type Filter func(model.Object) model.Object

// Clone builds a new contest by replaying this contest's log through
// filter. Listeners and modifiers are not copied.
func (c *Contest) Clone(filter Filter, opts ...Option) *Contest {
	c.mu.Lock()
	var objs []model.Object
	c.log.Iterate(func(obj model.Object, _ model.Delta) {
		objs = append(objs, obj)
	})
	c.mu.Unlock()

	clone := New(append([]Option{
		WithLogger(c.logger),
		WithHiddenPolicy(c.hidden),
		WithScoring(c.Scoring()),
	}, opts...)...)
	for _, obj := range objs {
		if filter != nil {
			obj = filter(obj)
		}
		if obj != nil {
			clone.Add(obj)
		}
	}
	return clone
}

// Validate reports dangling references between live objects. An empty
// result means the contest is consistent.
func (c *Contest) Validate() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []string
	missing := func(obj model.Object, field string, kind model.Kind, id string) {
		if id == "" || c.log.Get(kind, id) != nil {
			return
		}
		errs = append(errs, fmt.Sprintf("invalid %s (%s): %s %q not found",
			obj.Kind(), obj.ID(), field, id))
	}

	for _, obj := range c.log.Objects() {
		switch o := obj.(type) {
		case model.Team:
			missing(o, "organization", model.KindOrganization, o.OrganizationID)
			for _, g := range o.GroupIDs {
				missing(o, "group", model.KindGroup, g)
			}
		case model.TeamMember:
			missing(o, "team", model.KindTeam, o.TeamID)
		case model.Submission:
			missing(o, "team", model.KindTeam, o.TeamID)
			missing(o, "problem", model.KindProblem, o.ProblemID)
			missing(o, "language", model.KindLanguage, o.LanguageID)
			if !o.ContestTime.Known() {
				errs = append(errs, fmt.Sprintf("invalid %s (%s): contest time missing", o.Kind(), o.ID()))
			}
		case model.Judgement:
			missing(o, "submission", model.KindSubmission, o.SubmissionID)
			missing(o, "judgement type", model.KindJudgementType, o.JudgementTypeID)
		case model.Run:
			missing(o, "judgement", model.KindJudgement, o.JudgementID)
			missing(o, "judgement type", model.KindJudgementType, o.JudgementTypeID)
		case model.Clarification:
			missing(o, "from team", model.KindTeam, o.FromTeamID)
			missing(o, "to team", model.KindTeam, o.ToTeamID)
			missing(o, "reply", model.KindClarification, o.ReplyToID)
			missing(o, "problem", model.KindProblem, o.ProblemID)
		case model.Award:
			for _, t := range o.TeamIDs {
				missing(o, "team", model.KindTeam, t)
			}
		}
	}
	return errs
}
