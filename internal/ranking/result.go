package ranking

import (
	"github.com/roach88/cds/internal/model"
)

// Result is the state of one (team, problem) cell.
type Result struct {
	NumSubmissions int           `json:"num_submissions"`
	NumPending     int           `json:"num_pending"`
	NumJudged      int           `json:"num_judged"`
	Status         model.Status  `json:"status"`
	ContestTime    model.RelTime `json:"contest_time"`
	Penalty        int           `json:"penalty"`
	FirstToSolve   bool          `json:"first_to_solve,omitempty"`

	penaltyAttempts int
}

// addSubmission folds one in-window submission into the cell. Submissions
// after the solving one do not change the cell.
func (r *Result) addSubmission(t model.RelTime, jt *model.JudgementType, penaltyTime int) {
	if r.Status == model.Solved {
		return
	}
	r.NumSubmissions++
	r.ContestTime = t

	switch {
	case jt == nil:
		r.NumPending++
		r.Status = model.Submitted
	case jt.Solved:
		r.NumJudged++
		r.Status = model.Solved
		r.Penalty = r.penaltyAttempts * penaltyTime
	default:
		r.NumJudged++
		if jt.Penalty {
			r.penaltyAttempts++
		}
		if r.NumPending == 0 {
			r.Status = model.Failed
		}
	}
}

// SolveMinutes returns the solve time in whole minutes, or 0 if unsolved.
func (r Result) SolveMinutes() int {
	if r.Status != model.Solved {
		return 0
	}
	return r.ContestTime.Minutes()
}

// ProblemSummary aggregates every team's cell for one problem.
type ProblemSummary struct {
	Submissions   int           `json:"submissions"`
	Pending       int           `json:"pending"`
	Solved        int           `json:"solved"`
	Failed        int           `json:"failed"`
	Attempted     int           `json:"attempted"`
	FirstSolution model.RelTime `json:"first_solution"`
}

func newProblemSummary() ProblemSummary {
	return ProblemSummary{FirstSolution: model.UnknownTime}
}

func (p *ProblemSummary) addResult(r Result) {
	if r.NumSubmissions == 0 {
		return
	}
	p.Attempted++
	p.Submissions += r.NumSubmissions
	p.Pending += r.NumPending
	switch r.Status {
	case model.Solved:
		p.Solved++
		p.Failed += r.NumJudged - 1
		if !p.FirstSolution.Known() || r.ContestTime < p.FirstSolution {
			p.FirstSolution = r.ContestTime
		}
	default:
		p.Failed += r.NumJudged
	}
}

// Standing is a team's aggregate score.
type Standing struct {
	Solved int `json:"solved"`
	// Penalty is in minutes: per-attempt penalties plus solve times.
	Penalty int `json:"penalty"`
	// LastSolution is the minute of the most recent solve, 0 if none.
	LastSolution int `json:"last_solution"`
	// Rank is 1-based; 0 for hidden teams.
	Rank int `json:"rank"`
}

// FirstToSolve marks the first solve of a problem. Pending means the
// earliest candidate is still waiting for a verdict.
type FirstToSolve struct {
	SubmissionID string `json:"submission_id,omitempty"`
	Pending      bool   `json:"pending,omitempty"`
}

// Resolved reports whether the problem has a first solve or a blocking
// pending candidate.
func (f FirstToSolve) Resolved() bool {
	return f.SubmissionID != "" || f.Pending
}
