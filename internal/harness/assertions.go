package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // assertion type
	View     string // projection the assertion ran against
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s (%s)\n", e.Type, e.View)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(h *Harness, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		c, err := h.projection(a)
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
			continue
		}
		if err := evaluate(c, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(c *contest.Contest, a Assertion) error {
	switch a.Type {
	case AssertOrder:
		return assertOrder(c, a)
	case AssertStanding:
		return assertStanding(c, a)
	case AssertFTS:
		return assertFTS(c, a)
	case AssertStatus:
		return assertStatus(c, a)
	case AssertViewCount:
		return assertViewCount(c, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func viewName(a Assertion) string {
	switch {
	case a.Role == "":
		return "blue"
	case a.TeamID != "":
		return a.Role + "/" + a.TeamID
	default:
		return a.Role
	}
}

// assertOrder checks the complete visible team order.
func assertOrder(c *contest.Contest, a Assertion) error {
	var got []string
	for _, t := range c.OrderedTeams() {
		got = append(got, t.TeamID)
	}
	if slices.Equal(got, a.Teams) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOrder,
		View:     viewName(a),
		Expected: fmt.Sprintf("%v", a.Teams),
		Actual:   fmt.Sprintf("%v", got),
	}
}

// assertStanding checks the fields the assertion sets; others are ignored.
func assertStanding(c *contest.Contest, a Assertion) error {
	st, err := c.Standing(a.Team)
	if err != nil {
		return &AssertionError{Type: AssertStanding, View: viewName(a), Expected: "team " + a.Team, Actual: err.Error()}
	}

	var diffs []string
	check := func(name string, want *int, got int) {
		if want != nil && *want != got {
			diffs = append(diffs, fmt.Sprintf("%s=%d (want %d)", name, got, *want))
		}
	}
	check("solved", a.Solved, st.Solved)
	check("penalty", a.Penalty, st.Penalty)
	check("rank", a.Rank, st.Rank)
	check("last_solution", a.Last, st.LastSolution)
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertStanding,
		View:     viewName(a),
		Expected: "standing of " + a.Team,
		Actual:   strings.Join(diffs, ", "),
	}
}

func assertFTS(c *contest.Contest, a Assertion) error {
	s, ok := c.SubmissionByID(a.Submission)
	got := ok && c.IsFirstToSolve(s)
	if got == *a.Expect {
		return nil
	}
	return &AssertionError{
		Type:     AssertFTS,
		View:     viewName(a),
		Expected: fmt.Sprintf("first to solve %s = %v", a.Submission, *a.Expect),
		Actual:   fmt.Sprintf("%v", got),
	}
}

func assertStatus(c *contest.Contest, a Assertion) error {
	var want model.Status
	if err := want.UnmarshalText([]byte(a.Status)); err != nil {
		return err
	}
	s, ok := c.SubmissionByID(a.Submission)
	if !ok {
		return &AssertionError{Type: AssertStatus, View: viewName(a), Expected: "submission " + a.Submission, Actual: "not found"}
	}
	if got := c.Status(s); got != want {
		return &AssertionError{
			Type:     AssertStatus,
			View:     viewName(a),
			Expected: fmt.Sprintf("%s is %s", a.Submission, want),
			Actual:   got.String(),
		}
	}
	return nil
}

func assertViewCount(c *contest.Contest, a Assertion) error {
	kind, err := model.ParseKind(a.Kind)
	if err != nil {
		return err
	}
	got := len(c.ObjectsOfKind(kind))
	if got == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertViewCount,
		View:     viewName(a),
		Expected: fmt.Sprintf("%d %s", *a.Count, kind),
		Actual:   fmt.Sprintf("%d", got),
	}
}
