package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/directdict/internal/config"
	"github.com/roach88/directdict/internal/lookup"
)

// Scenario defines a lookup scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dictionary is the inline dictionary definition. Relative source paths
	// resolve against the scenario file's directory.
	Dictionary config.File `yaml:"dictionary"`

	// Steps run in order against one dictionary instance.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation with optional expectations.
type Step struct {
	lookup.Request `yaml:",inline"`

	// Expect is compared with the output as canonical JSON. Nil skips the check.
	Expect any `yaml:"expect,omitempty"`

	// ExpectError is an error code (e.g. TYPE_MISMATCH) or a message
	// substring the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion checks round trips or the query counter after the run.
type Assertion struct {
	// Type is one of round_trips, total_round_trips or query_count.
	Type string `yaml:"type"`

	// Step is the step index (used by round_trips).
	Step int `yaml:"step,omitempty"`

	// Count is the expected value.
	Count int64 `yaml:"count"`
}

// Assertion type constants.
const (
	AssertRoundTrips      = "round_trips"
	AssertTotalRoundTrips = "total_round_trips"
	AssertQueryCount      = "query_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.Dictionary.Path = path
	return scenario, nil
}

// ParseScenario decodes and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Dictionary.Name == "" {
		return fmt.Errorf("dictionary.name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if !slices.Contains(lookup.Ops, step.Op) {
			return fmt.Errorf("step %d: invalid op %q: must be one of %v", i, step.Op, lookup.Ops)
		}
		if step.Expect != nil && step.ExpectError != "" {
			return fmt.Errorf("step %d: expect and expect_error are mutually exclusive", i)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertRoundTrips:
			if a.Step < 0 || a.Step >= len(s.Steps) {
				return fmt.Errorf("assertion %d: step %d out of range", i, a.Step)
			}
		case AssertTotalRoundTrips, AssertQueryCount:
		default:
			return fmt.Errorf("assertion %d: invalid type %q", i, a.Type)
		}
	}
	return nil
}
