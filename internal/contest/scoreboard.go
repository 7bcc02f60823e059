package contest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/ranking"
)

// Scoreboard is a consistent snapshot of the visible standings.
type Scoreboard struct {
	ContestID string              `json:"contest_id,omitempty"`
	Scoring   string              `json:"scoring"`
	State     model.State         `json:"state"`
	Problems  []ScoreboardProblem `json:"problems"`
	Rows      []ScoreboardRow     `json:"rows"`
}

// ScoreboardProblem is one scoreboard column.
type ScoreboardProblem struct {
	ProblemID string                 `json:"problem_id"`
	Label     string                 `json:"label,omitempty"`
	Summary   ranking.ProblemSummary `json:"summary"`
}

// ScoreboardRow is one visible team, in rank order.
type ScoreboardRow struct {
	Rank         int              `json:"rank"`
	TeamID       string           `json:"team_id"`
	Label        string           `json:"label,omitempty"`
	Name         string           `json:"name,omitempty"`
	Solved       int              `json:"solved"`
	Penalty      int              `json:"penalty"`
	LastSolution int              `json:"last_solution"`
	Results      []ranking.Result `json:"results"`
}

// Scoreboard returns the standings, columns and cells computed from one
// ranking.
func (c *Contest) Scoreboard() Scoreboard {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.rankingLocked()
	teams := c.teamsLocked()
	problems := c.problemsLocked()
	info, _ := c.Info()

	sb := Scoreboard{
		ContestID: info.ContestID,
		Scoring:   c.Scoring().String(),
		State:     c.State(),
		Problems:  make([]ScoreboardProblem, len(problems)),
		Rows:      make([]ScoreboardRow, 0, len(out.Order)),
	}
	for pi, p := range problems {
		sb.Problems[pi] = ScoreboardProblem{ProblemID: p.ProblemID, Label: p.Label, Summary: out.Summaries[pi]}
	}
	for _, ti := range out.Order {
		t := teams[ti]
		st := out.Standings[ti]
		sb.Rows = append(sb.Rows, ScoreboardRow{
			Rank:         st.Rank,
			TeamID:       t.TeamID,
			Label:        t.Label,
			Name:         t.Name,
			Solved:       st.Solved,
			Penalty:      st.Penalty,
			LastSolution: st.LastSolution,
			Results:      slices.Clone(out.Results[ti]),
		})
	}
	return sb
}

// Hash returns the SHA-256 of the canonical JSON form. Equal scoreboards
// hash equal regardless of how they were produced.
func (s Scoreboard) Hash() (string, error) {
	canonical, err := model.MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("scoreboard hash: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
