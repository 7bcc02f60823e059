package contest

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/cds/internal/model"
)

// Info returns the latest contest configuration. ok is false before any
// Info has been added.
func (c *Contest) Info() (info model.Info, ok bool) {
	if p := c.cache.info.Load(); p != nil {
		return *p, true
	}
	return model.Info{}, false
}

// State returns the latest contest clock state, or the zero State.
func (c *Contest) State() model.State {
	if p := c.cache.state.Load(); p != nil {
		return *p
	}
	return model.State{}
}

// Duration returns the contest length, 0 before Info arrives.
func (c *Contest) Duration() model.RelTime {
	info, _ := c.Info()
	return info.Length
}

// FreezeBoundary returns the contest time from which results are withheld.
func (c *Contest) FreezeBoundary() model.RelTime {
	info, _ := c.Info()
	return info.FreezeBoundary()
}

// IsBeforeFreeze reports whether s was submitted before the freeze boundary.
func (c *Contest) IsBeforeFreeze(s model.Submission) bool {
	return s.ContestTime.Known() && s.ContestTime < c.FreezeBoundary()
}

// IsDoneUpdating reports whether the feed has signalled end of updates.
func (c *Contest) IsDoneUpdating() bool {
	return c.State().DoneUpdating()
}

// Languages returns the current languages in arrival order.
func (c *Contest) Languages() []model.Language {
	return lazy(c, &c.cache.languages, c.buildLanguages)
}

func (c *Contest) buildLanguages() []model.Language {
	return byType[model.Language](c, model.KindLanguage)
}

// JudgementTypes returns the current judgement types in arrival order.
func (c *Contest) JudgementTypes() []model.JudgementType {
	return lazy(c, &c.cache.judgementTypes, c.buildJudgementTypes)
}

func (c *Contest) buildJudgementTypes() []model.JudgementType {
	return byType[model.JudgementType](c, model.KindJudgementType)
}

// Problems returns the problems sorted by ordinal. Equal ordinals keep
// arrival order.
func (c *Contest) Problems() []model.Problem {
	return lazy(c, &c.cache.problems, c.buildProblems)
}

func (c *Contest) problemsLocked() []model.Problem {
	return lazyLocked(&c.cache.problems, c.buildProblems)
}

func (c *Contest) buildProblems() []model.Problem {
	problems := byType[model.Problem](c, model.KindProblem)
	slices.SortStableFunc(problems, func(a, b model.Problem) int {
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})
	return problems
}

// Groups returns the current groups in arrival order.
func (c *Contest) Groups() []model.Group {
	return lazy(c, &c.cache.groups, c.buildGroups)
}

func (c *Contest) buildGroups() []model.Group {
	return byType[model.Group](c, model.KindGroup)
}

// Organizations returns the current organizations in arrival order.
func (c *Contest) Organizations() []model.Organization {
	return lazy(c, &c.cache.organizations, func() []model.Organization {
		return byType[model.Organization](c, model.KindOrganization)
	})
}

// Teams returns the teams in arrival order. A team's position in this slice
// is its team index.
func (c *Contest) Teams() []model.Team {
	return lazy(c, &c.cache.teams, c.buildTeams)
}

func (c *Contest) teamsLocked() []model.Team {
	return lazyLocked(&c.cache.teams, c.buildTeams)
}

func (c *Contest) buildTeams() []model.Team {
	return byType[model.Team](c, model.KindTeam)
}

// TeamMembers returns every team member in arrival order.
func (c *Contest) TeamMembers() []model.TeamMember {
	return lazy(c, &c.cache.members, func() []model.TeamMember {
		return byType[model.TeamMember](c, model.KindTeamMember)
	})
}

// TeamMembersOf returns the members of a team: roles in descending order,
// then last names in collation order.
func (c *Contest) TeamMembersOf(teamID string) []model.TeamMember {
	var out []model.TeamMember
	for _, m := range c.TeamMembers() {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	col := collate.New(language.AmericanEnglish)
	slices.SortStableFunc(out, func(a, b model.TeamMember) int {
		if a.Role != "" && b.Role != "" && a.Role != b.Role {
			return -cmp.Compare(a.Role, b.Role)
		}
		if a.LastName != "" && b.LastName != "" {
			return col.CompareString(a.LastName, b.LastName)
		}
		return 0
	})
	return out
}

// Submissions returns the current submissions in arrival order.
func (c *Contest) Submissions() []model.Submission {
	return lazy(c, &c.cache.submissions, c.buildSubmissions)
}

func (c *Contest) submissionsLocked() []model.Submission {
	return lazyLocked(&c.cache.submissions, c.buildSubmissions)
}

func (c *Contest) buildSubmissions() []model.Submission {
	return byType[model.Submission](c, model.KindSubmission)
}

// Judgements returns the current judgements in arrival order.
func (c *Contest) Judgements() []model.Judgement {
	return lazy(c, &c.cache.judgements, c.buildJudgements)
}

func (c *Contest) judgementsLocked() []model.Judgement {
	return lazyLocked(&c.cache.judgements, c.buildJudgements)
}

func (c *Contest) buildJudgements() []model.Judgement {
	return byType[model.Judgement](c, model.KindJudgement)
}

// JudgementsOf returns the judgements of a submission in arrival order.
func (c *Contest) JudgementsOf(submissionID string) []model.Judgement {
	var out []model.Judgement
	for _, j := range c.Judgements() {
		if j.SubmissionID == submissionID {
			out = append(out, j)
		}
	}
	return out
}

// Runs returns the current runs in arrival order.
func (c *Contest) Runs() []model.Run {
	return lazy(c, &c.cache.runs, func() []model.Run {
		return byType[model.Run](c, model.KindRun)
	})
}

// RunsOf returns the runs of a judgement in arrival order.
func (c *Contest) RunsOf(judgementID string) []model.Run {
	var out []model.Run
	for _, r := range c.Runs() {
		if r.JudgementID == judgementID {
			out = append(out, r)
		}
	}
	return out
}

// Clarifications returns the current clarifications in arrival order.
func (c *Contest) Clarifications() []model.Clarification {
	return lazy(c, &c.cache.clarifications, func() []model.Clarification {
		return byType[model.Clarification](c, model.KindClarification)
	})
}

// Awards returns the current awards in arrival order.
func (c *Contest) Awards() []model.Award {
	return lazy(c, &c.cache.awards, func() []model.Award {
		return byType[model.Award](c, model.KindAward)
	})
}

// Pauses returns the current pauses in arrival order.
func (c *Contest) Pauses() []model.Pause {
	return lazy(c, &c.cache.pauses, func() []model.Pause {
		return byType[model.Pause](c, model.KindPause)
	})
}

// Countdown returns the first countdown object, if any.
func (c *Contest) Countdown() (model.Countdown, bool) {
	all := lazy(c, &c.cache.countdowns, func() []model.Countdown {
		return byType[model.Countdown](c, model.KindCountdown)
	})
	if len(all) == 0 {
		return model.Countdown{}, false
	}
	return all[0], true
}

// Get returns the current value for (kind, id), or nil.
func (c *Contest) Get(kind model.Kind, id string) model.Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.Get(kind, id)
}

// get fetches and converts a current value.
func get[T model.Object](c *Contest, kind model.Kind, id string) (T, bool) {
	v, ok := c.Get(kind, id).(T)
	return v, ok
}

// TeamByID looks up a team.
func (c *Contest) TeamByID(id string) (model.Team, bool) {
	return get[model.Team](c, model.KindTeam, id)
}

// ProblemByID looks up a problem.
func (c *Contest) ProblemByID(id string) (model.Problem, bool) {
	return get[model.Problem](c, model.KindProblem, id)
}

// GroupByID looks up a group.
func (c *Contest) GroupByID(id string) (model.Group, bool) {
	g, ok := c.groupMap()[id]
	return g, ok
}

// OrganizationByID looks up an organization.
func (c *Contest) OrganizationByID(id string) (model.Organization, bool) {
	return get[model.Organization](c, model.KindOrganization, id)
}

// LanguageByID looks up a language.
func (c *Contest) LanguageByID(id string) (model.Language, bool) {
	return get[model.Language](c, model.KindLanguage, id)
}

// JudgementTypeByID looks up a judgement type.
func (c *Contest) JudgementTypeByID(id string) (model.JudgementType, bool) {
	return get[model.JudgementType](c, model.KindJudgementType, id)
}

// SubmissionByID looks up a submission.
func (c *Contest) SubmissionByID(id string) (model.Submission, bool) {
	return get[model.Submission](c, model.KindSubmission, id)
}

// JudgementByID looks up a judgement.
func (c *Contest) JudgementByID(id string) (model.Judgement, bool) {
	return get[model.Judgement](c, model.KindJudgement, id)
}

// RunByID looks up a run.
func (c *Contest) RunByID(id string) (model.Run, bool) {
	return get[model.Run](c, model.KindRun, id)
}

// ClarificationByID looks up a clarification.
func (c *Contest) ClarificationByID(id string) (model.Clarification, bool) {
	return get[model.Clarification](c, model.KindClarification, id)
}

// GroupByExternalID finds a group by its icpc_id.
func (c *Contest) GroupByExternalID(externalID string) (model.Group, bool) {
	if externalID == "" {
		return model.Group{}, false
	}
	for _, g := range c.Groups() {
		if g.ExternalID == externalID {
			return g, true
		}
	}
	return model.Group{}, false
}

// ProblemIndex returns the position of a problem in Problems(), or -1.
func (c *Contest) ProblemIndex(problemID string) int {
	return slices.IndexFunc(c.Problems(), func(p model.Problem) bool {
		return p.ProblemID == problemID
	})
}

// ProblemIndexByLabel returns the position of the problem with label, or -1.
func (c *Contest) ProblemIndexByLabel(label string) int {
	if label == "" {
		return -1
	}
	return slices.IndexFunc(c.Problems(), func(p model.Problem) bool {
		return p.Label == label
	})
}

// TeamIndex returns the position of a team in Teams(), or -1.
func (c *Contest) TeamIndex(teamID string) int {
	idx := lazy(c, &c.cache.teamIndex, c.buildTeamIndex)
	if i, ok := idx[teamID]; ok {
		return i
	}
	return -1
}

func (c *Contest) buildTeamIndex() map[string]int {
	teams := c.teamsLocked()
	idx := make(map[string]int, len(teams))
	for i, t := range teams {
		idx[t.TeamID] = i
	}
	return idx
}

// Objects returns every live object in the order its current version
// arrived.
func (c *Contest) Objects() []model.Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.Objects()
}

// ObjectsOfKind returns the live objects of one kind in arrival order.
func (c *Contest) ObjectsOfKind(kind model.Kind) []model.Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.ByType(kind)
}
