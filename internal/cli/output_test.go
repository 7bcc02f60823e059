package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/ranking"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]string{"result": "<ok>"}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Contains(t, buf.String(), "<ok>")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error("E001", "feed not found", map[string]string{"path": "x"}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "feed not found", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, f.Error("E002", "bad feed", "line 3"))
	assert.Equal(t, "Error [E002]: bad feed\nDetails: line 3\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag}

	f.VerboseLog("hidden %d", 1)
	assert.Empty(t, diag.String())

	f.Verbose = true
	f.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", diag.String())
	assert.Empty(t, out.String())
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	inner := errors.New("disk full")
	err := WrapExitError(ExitFailure, "write failed", inner)
	assert.Equal(t, "write failed: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestWriteScoreboard(t *testing.T) {
	sb := contest.Scoreboard{
		Problems: []contest.ScoreboardProblem{{ProblemID: "A", Label: "A"}, {ProblemID: "b"}},
		Rows: []contest.ScoreboardRow{
			{Rank: 1, TeamID: "t2", Name: "Two", Solved: 1, Penalty: 20, Results: []ranking.Result{
				{Status: model.Submitted, NumPending: 1},
				{Status: model.Solved, NumJudged: 3},
			}},
			{Rank: 2, TeamID: "t1", Solved: 0, Results: []ranking.Result{
				{Status: model.Failed, NumJudged: 2},
				{},
			}},
		},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, writeScoreboard(buf, sb))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"RANK", "TEAM", "SOLVED", "PENALTY", "A", "b"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "Two", "1", "20", "?1", "+2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "t1", "0", "0", "-2", "."}, strings.Fields(lines[2]))
}
