package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cds/internal/model"
)

var (
	accepted     = &model.JudgementType{TypeID: "AC", Solved: true}
	wrongAnswer  = &model.JudgementType{TypeID: "WA", Penalty: true}
	compileError = &model.JudgementType{TypeID: "CE"}
)

// fixture builds an Input with verdicts keyed by submission id.
type fixture struct {
	in       Input
	verdicts map[string]*model.JudgementType
}

func newFixture(teams []string, problems []string) *fixture {
	f := &fixture{verdicts: map[string]*model.JudgementType{}}
	f.in = Input{
		Duration:       model.Minutes(300),
		FreezeBoundary: model.Minutes(240),
		PenaltyTime:    20,
		Mode:           Official,
		Hidden:         make([]bool, len(teams)),
	}
	for _, id := range teams {
		f.in.Teams = append(f.in.Teams, model.Team{TeamID: id})
	}
	for i, id := range problems {
		f.in.Problems = append(f.in.Problems, model.Problem{ProblemID: id, Ordinal: i})
	}
	f.in.Verdict = func(s model.Submission) *model.JudgementType {
		return f.verdicts[s.SubmissionID]
	}
	return f
}

func (f *fixture) submit(id, team, problem string, minute int, jt *model.JudgementType) {
	f.in.Submissions = append(f.in.Submissions, model.Submission{
		SubmissionID: id,
		TeamID:       team,
		ProblemID:    problem,
		ContestTime:  model.Minutes(minute),
	})
	if jt != nil {
		f.verdicts[id] = jt
	}
}

func TestCompute_StandingWithPenalty(t *testing.T) {
	f := newFixture([]string{"X"}, []string{"A"})
	f.in.Mode = Interim
	f.submit("s1", "X", "A", 10, wrongAnswer)
	f.submit("s2", "X", "A", 40, accepted)

	out := Compute(f.in)

	assert.Equal(t, Standing{Solved: 1, Penalty: 60, LastSolution: 40, Rank: 1}, out.Standings[0])
	cell := out.Results[0][0]
	assert.Equal(t, model.Solved, cell.Status)
	assert.Equal(t, 2, cell.NumSubmissions)
	assert.Equal(t, 20, cell.Penalty)
	assert.Equal(t, model.Minutes(40), cell.ContestTime)
}

func TestCompute_NonPenaltyVerdictAddsNothing(t *testing.T) {
	f := newFixture([]string{"X"}, []string{"A"})
	f.submit("s1", "X", "A", 5, compileError)
	f.submit("s2", "X", "A", 30, accepted)

	out := Compute(f.in)
	assert.Equal(t, 30, out.Standings[0].Penalty)
}

func TestCompute_SubmissionsAfterSolveIgnored(t *testing.T) {
	f := newFixture([]string{"X"}, []string{"A"})
	f.submit("s1", "X", "A", 30, accepted)
	f.submit("s2", "X", "A", 50, wrongAnswer)

	out := Compute(f.in)
	assert.Equal(t, 1, out.Results[0][0].NumSubmissions)
	assert.Equal(t, 30, out.Standings[0].Penalty)
}

func TestCompute_SortsByContestTime(t *testing.T) {
	f := newFixture([]string{"X"}, []string{"A"})
	// arrival order differs from contest time order
	f.submit("s2", "X", "A", 40, accepted)
	f.submit("s1", "X", "A", 10, wrongAnswer)

	out := Compute(f.in)
	assert.Equal(t, 60, out.Standings[0].Penalty)
}

func TestCompute_FirstToSolve(t *testing.T) {
	f := newFixture([]string{"A", "B"}, []string{"P"})
	f.submit("S1", "A", "P", 10, wrongAnswer)
	f.submit("S2", "B", "P", 20, accepted)
	f.submit("S3", "A", "P", 30, accepted)

	out := Compute(f.in)
	assert.Equal(t, FirstToSolve{SubmissionID: "S2"}, out.FirstToSolve[0])
	assert.True(t, out.Results[1][0].FirstToSolve)
	assert.False(t, out.Results[0][0].FirstToSolve)
}

func TestCompute_FirstToSolveSkipsHiddenTeams(t *testing.T) {
	f := newFixture([]string{"A", "B"}, []string{"P"})
	f.in.Hidden[1] = true
	f.submit("S1", "A", "P", 10, wrongAnswer)
	f.submit("S2", "B", "P", 20, accepted)
	f.submit("S3", "A", "P", 30, accepted)

	out := Compute(f.in)
	assert.Equal(t, FirstToSolve{SubmissionID: "S3"}, out.FirstToSolve[0])
	assert.True(t, out.Results[0][0].FirstToSolve)
}

func TestCompute_PendingBlocksFirstToSolve(t *testing.T) {
	f := newFixture([]string{"A", "B"}, []string{"P"})
	f.submit("S1", "A", "P", 5, nil)
	f.submit("S2", "B", "P", 10, accepted)

	out := Compute(f.in)
	assert.Equal(t, FirstToSolve{Pending: true}, out.FirstToSolve[0])
	assert.False(t, out.Results[1][0].FirstToSolve)
	assert.Equal(t, model.Submitted, out.Results[0][0].Status)
}

func TestCompute_NoSolveNoPendingIsUnresolved(t *testing.T) {
	f := newFixture([]string{"A"}, []string{"P"})
	f.submit("S1", "A", "P", 5, wrongAnswer)

	out := Compute(f.in)
	assert.False(t, out.FirstToSolve[0].Resolved())
	assert.Equal(t, model.Failed, out.Results[0][0].Status)
}

func TestCompute_PendingTakesPrecedenceOverFailed(t *testing.T) {
	f := newFixture([]string{"A"}, []string{"P"})
	f.submit("S1", "A", "P", 5, nil)
	f.submit("S2", "A", "P", 6, wrongAnswer)

	out := Compute(f.in)
	assert.Equal(t, model.Submitted, out.Results[0][0].Status)
	assert.Equal(t, 1, out.Results[0][0].NumPending)
	assert.Equal(t, 1, out.Results[0][0].NumJudged)
}

func TestCompute_ExcludesOutOfWindow(t *testing.T) {
	f := newFixture([]string{"A"}, []string{"P"})
	f.submit("late", "A", "P", 300, accepted)
	f.in.Submissions = append(f.in.Submissions, model.Submission{
		SubmissionID: "unknown-time", TeamID: "A", ProblemID: "P", ContestTime: model.UnknownTime,
	})
	f.verdicts["unknown-time"] = accepted

	out := Compute(f.in)
	assert.Equal(t, 0, out.Results[0][0].NumSubmissions)
	assert.Equal(t, 0, out.Standings[0].Solved)
	assert.Equal(t, 0, out.Summaries[0].Submissions)
}

func TestCompute_InterimHidesPostFreezeVerdicts(t *testing.T) {
	f := newFixture([]string{"A"}, []string{"P"})
	f.submit("S1", "A", "P", 250, accepted)

	f.in.Mode = Interim
	interim := Compute(f.in)
	assert.Equal(t, model.Submitted, interim.Results[0][0].Status)
	assert.Equal(t, 0, interim.Standings[0].Solved)
	assert.Equal(t, FirstToSolve{Pending: true}, interim.FirstToSolve[0])

	f.in.Mode = Official
	official := Compute(f.in)
	assert.Equal(t, model.Solved, official.Results[0][0].Status)
	assert.Equal(t, 1, official.Standings[0].Solved)
}

func TestCompute_UnknownReferencesSkipped(t *testing.T) {
	f := newFixture([]string{"A"}, []string{"P"})
	f.submit("S1", "ghost", "P", 10, accepted)
	f.submit("S2", "A", "nope", 10, accepted)
	f.submit("S3", "A", "P", 20, accepted)

	out := Compute(f.in)
	assert.Equal(t, 1, out.Standings[0].Solved)
	assert.Equal(t, 1, out.Summaries[0].Submissions)
}

func TestCompute_ZeroFilled(t *testing.T) {
	f := newFixture([]string{"A", "B", "C"}, []string{"P", "Q"})

	out := Compute(f.in)
	require.Len(t, out.Results, 3)
	for _, row := range out.Results {
		require.Len(t, row, 2)
		for _, r := range row {
			assert.Equal(t, model.Unattempted, r.Status)
		}
	}
	require.Len(t, out.Summaries, 2)
	assert.False(t, out.Summaries[0].FirstSolution.Known())
	assert.Equal(t, []int{0, 1, 2}, out.Order)
	for _, st := range out.Standings {
		assert.Equal(t, 1, st.Rank)
	}
}

func TestCompute_HiddenTeamsExcludedFromOrder(t *testing.T) {
	f := newFixture([]string{"A", "B"}, []string{"P"})
	f.in.Hidden[0] = true
	f.submit("S1", "A", "P", 10, accepted)

	out := Compute(f.in)
	assert.Equal(t, []int{1}, out.Order)
	assert.Equal(t, 1, out.Standings[0].Solved, "hidden teams still get standings")
	assert.Equal(t, 0, out.Standings[0].Rank)
	assert.Equal(t, 1, out.Standings[1].Rank)
}

func TestCompute_ProblemSummary(t *testing.T) {
	f := newFixture([]string{"A", "B", "C"}, []string{"P"})
	f.submit("S1", "A", "P", 10, wrongAnswer)
	f.submit("S2", "A", "P", 25, accepted)
	f.submit("S3", "B", "P", 15, accepted)
	f.submit("S4", "C", "P", 30, nil)

	out := Compute(f.in)
	assert.Equal(t, ProblemSummary{
		Submissions:   4,
		Pending:       1,
		Solved:        2,
		Failed:        1,
		Attempted:     3,
		FirstSolution: model.Minutes(15),
	}, out.Summaries[0])
}

func TestCompute_Idempotent(t *testing.T) {
	f := newFixture([]string{"A", "B"}, []string{"P", "Q"})
	f.submit("S1", "A", "P", 10, wrongAnswer)
	f.submit("S2", "B", "Q", 20, accepted)
	f.submit("S3", "A", "P", 30, accepted)
	f.submit("S4", "B", "P", 40, nil)

	assert.Equal(t, Compute(f.in), Compute(f.in))
}

func TestRecentActivity(t *testing.T) {
	teams := []model.Team{{TeamID: "A"}, {TeamID: "B"}}
	subs := []model.Submission{
		{SubmissionID: "S1", TeamID: "A", ContestTime: model.Minutes(5)},
		{SubmissionID: "S2", TeamID: "A", ContestTime: model.Minutes(9)},
		{SubmissionID: "S3", TeamID: "ghost", ContestTime: model.Minutes(10)},
	}
	recent := RecentActivity(teams, subs, func(s model.Submission) model.Status {
		return model.Failed
	})

	require.Len(t, recent, 2)
	require.NotNil(t, recent[0])
	assert.Equal(t, "S2", recent[0].SubmissionID)
	assert.Equal(t, model.Minutes(9), recent[0].Time)
	assert.Nil(t, recent[1])
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("official")
	assert.True(t, ok)
	assert.Equal(t, Official, m)

	_, ok = ParseMode("frozen")
	assert.False(t, ok)
}
