package views

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/ranking"
)

// balloonLimit is the solve count below which a team keeps receiving
// balloons after the freeze.
const balloonLimit = 3

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the base logger for the router and its projections.
// Default is slog.Default(). Each projection labels its own lines with its
// name, so l should not already carry a contest attribute.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// WithTeams adds a per-team projection for each team id.
func WithTeams(teamIDs ...string) Option {
	return func(r *Router) {
		r.teamIDs = append(r.teamIDs, teamIDs...)
	}
}

// WithTransitionHandler registers fn for clock transitions. fn runs on the
// delivery path; objects it adds to the full contest are routed after the
// current delivery.
func WithTransitionHandler(fn func(Transition, model.State)) Option {
	return func(r *Router) {
		r.onTransition = fn
	}
}

// WithHidden marks the whole contest as hidden: only the blue role gets a
// view.
func WithHidden() Option {
	return func(r *Router) {
		r.hidden = true
	}
}

// Router maintains the role projections of one full contest.
//
// Deliveries from the full contest are serialized, so the router's own
// state needs no lock.
type Router struct {
	full    *contest.Contest
	logger  *slog.Logger
	hidden  bool
	teamIDs []string

	trusted *contest.Contest
	balloon *contest.Contest
	public  *contest.Contest
	teams   map[string]*contest.Contest

	onTransition func(Transition, model.State)

	current  model.State
	withheld []model.Judgement
	sub      contest.Subscription
}

// New builds the projections and attaches to full. Its history is replayed
// before New returns unless full is in the middle of a delivery, in which
// case the replay follows that delivery.
func New(full *contest.Contest, opts ...Option) *Router {
	r := &Router{
		full:  full,
		teams: make(map[string]*contest.Contest),
	}
	for _, opt := range opts {
		opt(r)
	}
	base := r.logger
	if base == nil {
		base = slog.Default()
	}
	r.logger = base
	if name := full.Name(); name != "" {
		r.logger = base.With("contest", name)
	}

	project := func(name string, mode ranking.Mode) *contest.Contest {
		return contest.New(
			contest.WithName(name),
			contest.WithLogger(base),
			contest.WithScoring(mode),
		)
	}
	r.trusted = project("trusted", ranking.Interim)
	r.balloon = project("balloon", ranking.Official)
	r.public = project("public", ranking.Interim)
	slices.Sort(r.teamIDs)
	r.teamIDs = slices.Compact(r.teamIDs)
	for _, id := range r.teamIDs {
		r.teams[id] = project("team/"+id, ranking.Interim)
	}

	r.sub = full.AddListenerFromStart(r)
	return r
}

// Close detaches the router from the full contest.
func (r *Router) Close() {
	r.full.RemoveListener(r.sub)
}

// Contest returns the projection for a role. teamID selects the per-team
// projection for RoleTeam and is ignored otherwise.
func (r *Router) Contest(role Role, teamID string) (*contest.Contest, error) {
	if r.hidden && role != RoleBlue {
		return nil, fmt.Errorf("%s: %w (contest hidden)", role, ErrNoView)
	}
	switch role {
	case RoleBlue:
		return r.full, nil
	case RoleTrusted:
		return r.trusted, nil
	case RoleBalloon:
		return r.balloon, nil
	case RolePublic:
		return r.public, nil
	case RoleTeam:
		if c, ok := r.teams[teamID]; ok {
			return c, nil
		}
		return nil, fmt.Errorf("team %q: %w", teamID, ErrNoView)
	}
	return nil, fmt.Errorf("%s: %w", role, ErrNoView)
}

// TeamIDs returns the ids that have a per-team projection.
func (r *Router) TeamIDs() []string {
	return slices.Clone(r.teamIDs)
}

// ContestChanged implements contest.Listener.
func (r *Router) ContestChanged(full *contest.Contest, obj model.Object, delta model.Delta) error {
	if d, ok := obj.(model.Deletion); ok {
		if d.Of != model.KindAward {
			r.toAll(d)
		}
		return nil
	}

	if obj.Kind() == model.KindProblem && !r.current.Started() {
		return nil
	}
	if obj.Kind() == model.KindAward {
		return nil
	}

	switch o := obj.(type) {
	case model.Group:
		r.routeGroup(o)
		return nil
	case model.Team:
		r.routeTeam(o)
		return nil
	}

	if r.isHidden(obj) {
		return nil
	}

	switch o := obj.(type) {
	case model.Submission:
		if ranking.InWindow(o.ContestTime, full.Duration()) {
			r.toAll(o)
		}
	case model.Judgement:
		r.routeJudgement(o)
	case model.Run:
		if o.ContestTime.Known() && o.ContestTime < full.FreezeBoundary() {
			r.trusted.Add(o)
		}
	case model.Clarification:
		r.trusted.Add(o)
		if o.Broadcast() {
			r.public.Add(o)
			r.balloon.Add(o)
			r.toTeams(o)
			break
		}
		for _, id := range []string{o.FromTeamID, o.ToTeamID} {
			if tc, ok := r.teams[id]; ok {
				tc.Add(o)
			}
		}
	case model.State:
		r.toAll(o)
		r.stateChanged(o)
	default:
		r.toAll(obj)
	}
	return nil
}

// toAll delivers obj to every projection below blue.
func (r *Router) toAll(obj model.Object) {
	r.trusted.Add(obj)
	r.balloon.Add(obj)
	r.public.Add(obj)
	r.toTeams(obj)
}

func (r *Router) toTeams(obj model.Object) {
	for _, id := range r.teamIDs {
		r.teams[id].Add(obj)
	}
}

// routeGroup forwards a visible group, tombstones a hidden one, and
// re-evaluates the teams that belong to it.
func (r *Router) routeGroup(g model.Group) {
	if g.Hidden {
		r.toAll(model.Deletion{Of: model.KindGroup, ObjectID: g.GroupID})
	} else {
		r.toAll(g)
	}
	for _, t := range r.full.Teams() {
		if slices.Contains(t.GroupIDs, g.GroupID) {
			r.routeTeam(t)
		}
	}
}

// routeTeam forwards a visible team and tombstones a hidden one.
func (r *Router) routeTeam(t model.Team) {
	if r.full.IsTeamHidden(t) {
		r.toAll(model.Deletion{Of: model.KindTeam, ObjectID: t.TeamID})
		return
	}
	r.toAll(t)
}

func (r *Router) routeJudgement(j model.Judgement) {
	s, ok := r.full.SubmissionByID(j.SubmissionID)
	if !ok || r.full.IsBeforeFreeze(s) {
		r.toAll(j)
		return
	}

	r.withheld = append(r.withheld, j)
	if r.full.IsSolved(s) && solvedCount(r.balloon, s.TeamID) < balloonLimit {
		r.balloon.Add(j)
	}
}

// isHidden reports whether obj belongs to a hidden team, directly or via
// its submission, judgement or run links.
func (r *Router) isHidden(obj model.Object) bool {
	switch o := obj.(type) {
	case model.TeamMember:
		return r.teamHidden(o.TeamID)
	case model.Submission:
		return r.teamHidden(o.TeamID)
	case model.Judgement:
		return r.submissionHidden(o.SubmissionID)
	case model.Run:
		j, ok := r.full.JudgementByID(o.JudgementID)
		return ok && r.submissionHidden(j.SubmissionID)
	case model.Clarification:
		return r.teamHidden(o.FromTeamID) || r.teamHidden(o.ToTeamID)
	}
	return false
}

func (r *Router) teamHidden(teamID string) bool {
	if teamID == "" {
		return false
	}
	t, ok := r.full.TeamByID(teamID)
	return ok && r.full.IsTeamHidden(t)
}

func (r *Router) submissionHidden(submissionID string) bool {
	s, ok := r.full.SubmissionByID(submissionID)
	return ok && r.teamHidden(s.TeamID)
}

// stateChanged raises transition notices on leading edges.
func (r *Router) stateChanged(next model.State) {
	prev := r.current
	r.current = next

	if !prev.Started() && next.Started() {
		for _, p := range r.full.Problems() {
			r.toAll(p)
		}
		r.notify(Started, next)
	}
	if prev.Running() && !next.Running() && next.Started() {
		r.notify(Ended, next)
	}
	if prev.Frozen() != next.Frozen() {
		if next.Frozen() {
			r.notify(Frozen, next)
		} else {
			r.notify(Thawed, next)
		}
	}
	if !prev.Final() && next.Final() {
		r.release()
		r.notify(Finalized, next)
	}
	if !prev.DoneUpdating() && next.DoneUpdating() {
		r.notify(EndOfUpdates, next)
	}
}

// release delivers the withheld judgements that are still live in the full
// contest and switches every contest, the full one included, to official
// scoring.
func (r *Router) release() {
	held := r.withheld
	r.withheld = nil
	seen := make(map[string]struct{}, len(held))
	released := 0
	for _, w := range held {
		if _, dup := seen[w.JudgementID]; dup {
			continue
		}
		seen[w.JudgementID] = struct{}{}
		j, ok := r.full.JudgementByID(w.JudgementID)
		if !ok || r.isHidden(j) {
			continue
		}
		r.trusted.Add(j)
		r.public.Add(j)
		r.balloon.Add(j)
		r.toTeams(j)
		released++
	}
	r.full.Finalize()
	r.trusted.Finalize()
	r.public.Finalize()
	r.balloon.Finalize()
	for _, id := range r.teamIDs {
		r.teams[id].Finalize()
	}
	r.logger.Info("released withheld judgements", "judgements", released)
}

func (r *Router) notify(t Transition, s model.State) {
	r.logger.Info("contest "+t.String(), "state", s)
	if r.onTransition != nil {
		r.onTransition(t, s)
	}
}

// Withheld returns the number of judgements waiting for finalization.
func (r *Router) Withheld() int {
	return len(r.withheld)
}

// solvedCount returns how many distinct problems a team has solved in c.
func solvedCount(c *contest.Contest, teamID string) int {
	solved := make(map[string]struct{})
	for _, s := range c.Submissions() {
		if s.TeamID == teamID && c.IsSolved(s) {
			solved[s.ProblemID] = struct{}{}
		}
	}
	return len(solved)
}
