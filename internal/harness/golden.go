package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
)

// ScoreboardSnapshot is what golden files record for a scenario.
type ScoreboardSnapshot struct {
	ScenarioName string             `json:"scenario_name"`
	Scoreboard   contest.Scoreboard `json:"scoreboard"`
}

// Snapshot returns the canonical JSON golden form of a result.
func Snapshot(name string, result *Result) ([]byte, error) {
	return model.MarshalCanonical(ScoreboardSnapshot{
		ScenarioName: name,
		Scoreboard:   result.Scoreboard,
	})
}

// RunWithGolden executes a scenario and compares its final scoreboard
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return result, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
