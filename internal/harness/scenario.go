package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/ranking"
	"github.com/roach88/cds/internal/views"
)

// Scenario defines one contest test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Info is the data of the contest object added before any event.
	Info map[string]any `yaml:"info,omitempty"`

	// HiddenPolicy is "all" (default) or "any".
	HiddenPolicy string `yaml:"hidden_policy,omitempty"`

	// Scoring is "interim" (default) or "official".
	Scoring string `yaml:"scoring,omitempty"`

	// Events are added in order, feed-shaped.
	Events []Event `yaml:"events"`

	// Assertions validate the final contest and its projections.
	Assertions []Assertion `yaml:"assertions"`
}

// Event is one feed event.
type Event struct {
	Type string         `yaml:"type" json:"type"`
	ID   string         `yaml:"id,omitempty" json:"id,omitempty"`
	Op   string         `yaml:"op,omitempty" json:"op,omitempty"`
	Data map[string]any `yaml:"data" json:"data"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Role selects the projection: blue (default), trusted, balloon,
	// public or team. Team projections also need TeamID.
	Role   string `yaml:"role,omitempty"`
	TeamID string `yaml:"team_id,omitempty"`

	// Teams is the expected order (order).
	Teams []string `yaml:"teams,omitempty"`

	// Team is the subject of standing.
	Team    string `yaml:"team,omitempty"`
	Solved  *int   `yaml:"solved,omitempty"`
	Penalty *int   `yaml:"penalty,omitempty"`
	Rank    *int   `yaml:"rank,omitempty"`
	Last    *int   `yaml:"last_solution,omitempty"`

	// Submission is the subject of fts and status.
	Submission string `yaml:"submission,omitempty"`
	Expect     *bool  `yaml:"expect,omitempty"`
	Status     string `yaml:"status,omitempty"`

	// Kind and Count are used by view_count.
	Kind  string `yaml:"kind,omitempty"`
	Count *int   `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertOrder     = "order"
	AssertStanding  = "standing"
	AssertFTS       = "fts"
	AssertStatus    = "status"
	AssertViewCount = "view_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted. A
// non-empty filter is a glob matched against the base name without
// extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if _, ok := contest.ParseHiddenPolicy(s.HiddenPolicy); !ok {
		return fmt.Errorf("hidden_policy: unknown policy %q", s.HiddenPolicy)
	}
	if _, ok := ranking.ParseMode(s.Scoring); !ok {
		return fmt.Errorf("scoring: unknown mode %q", s.Scoring)
	}

	for i, e := range s.Events {
		if _, err := model.ParseKind(e.Type); err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Role != "" {
		role, err := views.ParseRole(a.Role)
		if err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if role == views.RoleTeam && a.TeamID == "" {
			return fmt.Errorf("assertions[%d]: team_id is required for the team role", index)
		}
	}

	switch a.Type {
	case AssertOrder:
		if a.Teams == nil {
			return fmt.Errorf("assertions[%d]: teams is required for order", index)
		}
	case AssertStanding:
		if a.Team == "" {
			return fmt.Errorf("assertions[%d]: team is required for standing", index)
		}
		if a.Solved == nil && a.Penalty == nil && a.Rank == nil && a.Last == nil {
			return fmt.Errorf("assertions[%d]: standing needs at least one of solved, penalty, rank, last_solution", index)
		}
	case AssertFTS:
		if a.Submission == "" || a.Expect == nil {
			return fmt.Errorf("assertions[%d]: submission and expect are required for fts", index)
		}
	case AssertStatus:
		if a.Submission == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: submission and status are required for status", index)
		}
		var st model.Status
		if err := st.UnmarshalText([]byte(a.Status)); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertViewCount:
		if a.Kind == "" || a.Count == nil {
			return fmt.Errorf("assertions[%d]: kind and count are required for view_count", index)
		}
		if _, err := model.ParseKind(a.Kind); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
