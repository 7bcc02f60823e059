package harness

import "github.com/roach88/cds/internal/contest"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Errors contains the assertion failure messages.
	Errors []string `json:"errors,omitempty"`

	// Applied counts events that changed the contest.
	Applied int `json:"applied"`

	// Scoreboard is the final blue scoreboard.
	Scoreboard contest.Scoreboard `json:"scoreboard"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
