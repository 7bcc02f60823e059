package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/feed"
	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/ranking"
	"github.com/roach88/cds/internal/views"
)

// Harness holds the contest and projections of one scenario run.
type Harness struct {
	full   *contest.Contest
	views  *views.Router
	logger *slog.Logger
}

// Run executes a scenario against a fresh contest and returns the result.
// An error means the scenario could not be executed; failed assertions are
// reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}
	defer h.views.Close()

	objs, err := scenarioObjects(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for _, obj := range objs {
		if h.full.Add(obj) != model.NOOP {
			result.Applied++
		}
	}

	for _, msg := range EvaluateAssertions(h, scenario.Assertions) {
		result.AddError(msg)
	}
	result.Scoreboard = h.full.Scoreboard()
	return result, nil
}

func newHarness(s *Scenario) (*Harness, error) {
	policy, ok := contest.ParseHiddenPolicy(s.HiddenPolicy)
	if !ok {
		return nil, fmt.Errorf("unknown hidden policy %q", s.HiddenPolicy)
	}
	mode, ok := ranking.ParseMode(s.Scoring)
	if !ok {
		return nil, fmt.Errorf("unknown scoring mode %q", s.Scoring)
	}
	// Logs are suppressed in scenario runs.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	full := contest.New(
		contest.WithName(s.Name),
		contest.WithLogger(logger),
		contest.WithHiddenPolicy(policy),
		contest.WithScoring(mode),
	)

	var teamIDs []string
	for _, a := range s.Assertions {
		if a.TeamID != "" {
			teamIDs = append(teamIDs, a.TeamID)
		}
	}
	router := views.New(full, views.WithLogger(logger), views.WithTeams(teamIDs...))
	return &Harness{full: full, views: router, logger: logger}, nil
}

// scenarioObjects turns Info and Events into contest objects through the
// feed decoder, so scenarios exercise the same parsing as real feeds.
func scenarioObjects(s *Scenario) ([]model.Object, error) {
	events := s.Events
	if s.Info != nil {
		events = append([]Event{{Type: model.KindInfo.String(), Data: s.Info}}, events...)
	}

	out := make([]model.Object, 0, len(events))
	for i, e := range events {
		line, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		obj, err := feed.Decode(line)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

// projection returns the contest an assertion is evaluated against.
func (h *Harness) projection(a Assertion) (*contest.Contest, error) {
	if a.Role == "" {
		return h.full, nil
	}
	role, err := views.ParseRole(a.Role)
	if err != nil {
		return nil, err
	}
	return h.views.Contest(role, a.TeamID)
}
