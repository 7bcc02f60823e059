package ranking

import (
	"log/slog"
	"slices"

	"github.com/roach88/cds/internal/model"
)

// Mode selects which verdicts a computation may see.
type Mode int

const (
	// Interim hides verdicts on submissions at or after the freeze boundary.
	Interim Mode = iota
	// Official counts every verdict.
	Official
)

func (m Mode) String() string {
	switch m {
	case Interim:
		return "interim"
	case Official:
		return "official"
	default:
		return "unknown"
	}
}

// ParseMode maps "interim" or "official" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "interim", "":
		return Interim, true
	case "official":
		return Official, true
	}
	return Interim, false
}

// Input is an immutable snapshot to rank.
type Input struct {
	Duration       model.RelTime
	FreezeBoundary model.RelTime
	// PenaltyTime is the minutes added per penalized attempt before a solve.
	PenaltyTime int
	Mode        Mode

	Teams    []model.Team
	Problems []model.Problem
	// Hidden is parallel to Teams.
	Hidden      []bool
	Submissions []model.Submission

	// Verdict returns the current judgement type of a submission, or nil
	// while it is unjudged.
	Verdict func(model.Submission) *model.JudgementType

	Logger *slog.Logger
}

// Output is the complete ranking state for one Input.
type Output struct {
	// Results is indexed [team][problem].
	Results      [][]Result
	Summaries    []ProblemSummary
	Standings    []Standing
	FirstToSolve []FirstToSolve
	// Order lists visible team indices, best first.
	Order []int
}

// InWindow reports whether t lies in [0, duration).
func InWindow(t, duration model.RelTime) bool {
	return t.Known() && t >= 0 && t < duration
}

// Compute ranks in. It never fails: submissions with unknown team or problem
// references are logged and skipped.
func Compute(in Input) *Output {
	logger := in.Logger
	if logger == nil {
		logger = slog.Default()
	}
	numTeams := len(in.Teams)
	numProblems := len(in.Problems)

	out := &Output{
		Results:      make([][]Result, numTeams),
		Summaries:    make([]ProblemSummary, numProblems),
		Standings:    make([]Standing, numTeams),
		FirstToSolve: make([]FirstToSolve, numProblems),
	}
	for i := range out.Results {
		out.Results[i] = make([]Result, numProblems)
	}
	for j := range out.Summaries {
		out.Summaries[j] = newProblemSummary()
	}

	teamIndex := make(map[string]int, numTeams)
	for i, t := range in.Teams {
		teamIndex[t.TeamID] = i
	}
	problemIndex := make(map[string]int, numProblems)
	for j, p := range in.Problems {
		problemIndex[p.ProblemID] = j
	}

	subs := make([]model.Submission, 0, len(in.Submissions))
	for _, s := range in.Submissions {
		if InWindow(s.ContestTime, in.Duration) {
			subs = append(subs, s)
		}
	}
	slices.SortStableFunc(subs, func(a, b model.Submission) int {
		switch {
		case a.ContestTime < b.ContestTime:
			return -1
		case a.ContestTime > b.ContestTime:
			return 1
		}
		return 0
	})

	for _, s := range subs {
		ti, tok := teamIndex[s.TeamID]
		pi, pok := problemIndex[s.ProblemID]
		if !tok || !pok {
			logger.Warn("invalid submission",
				"submission", s.SubmissionID,
				"team", s.TeamID,
				"problem", s.ProblemID,
			)
			continue
		}

		jt := in.verdict(s)
		cell := &out.Results[ti][pi]
		cell.addSubmission(s.ContestTime, jt, in.PenaltyTime)

		fts := &out.FirstToSolve[pi]
		if fts.Resolved() || in.hidden(ti) {
			continue
		}
		switch {
		case jt == nil:
			fts.Pending = true
		case jt.Solved:
			fts.SubmissionID = s.SubmissionID
			cell.FirstToSolve = true
		}
	}

	for i := range out.Standings {
		st := &out.Standings[i]
		for j := range out.Results[i] {
			r := out.Results[i][j]
			if r.Status != model.Solved {
				continue
			}
			mins := r.SolveMinutes()
			st.Solved++
			st.Penalty += r.Penalty + mins
			if mins > st.LastSolution {
				st.LastSolution = mins
			}
		}
	}

	for i := range out.Results {
		for j := range out.Results[i] {
			out.Summaries[j].addResult(out.Results[i][j])
		}
	}

	out.Order = make([]int, 0, numTeams)
	for i := range in.Teams {
		if !in.hidden(i) {
			out.Order = append(out.Order, i)
		}
	}
	rankIt(out.Standings, out.Order)

	return out
}

// verdict applies the scoring mode to the caller's verdict lookup.
func (in Input) verdict(s model.Submission) *model.JudgementType {
	if in.Verdict == nil {
		return nil
	}
	if in.Mode == Interim && s.ContestTime >= in.FreezeBoundary {
		return nil
	}
	return in.Verdict(s)
}

func (in Input) hidden(teamIndex int) bool {
	return teamIndex < len(in.Hidden) && in.Hidden[teamIndex]
}
