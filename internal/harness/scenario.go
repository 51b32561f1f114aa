package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Layout is the ID of a built-in layout.
	// Defaults to "cielo" when LayoutFile is empty as well.
	Layout string `yaml:"layout,omitempty"`

	// LayoutFile is a CUE file holding the layout, resolved relative to the
	// scenario file. It must define exactly one layout.
	LayoutFile string `yaml:"layout_file,omitempty"`

	// PadTo right-pads every non-empty line with spaces to this length.
	// Keeps 250-column lines readable in YAML.
	PadTo int `yaml:"pad_to,omitempty"`

	// Lines is the settlement file content, one entry per line.
	Lines []string `yaml:"lines"`

	// Steps are the engine calls, executed in order against one scan state.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and store state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step actions.
const (
	ActionValidate = "validate"
	ActionHints    = "hints"
	ActionReset    = "reset"
)

// Step is one engine call.
type Step struct {
	// Action is one of validate, hints, reset.
	Action string `yaml:"action"`

	// Ranges are the half-open line ranges of a hints step.
	Ranges []Range `yaml:"ranges,omitempty"`

	// Expect specifies the expected outcome. If nil, nothing is checked.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Range is a half-open line interval [Start, End).
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Expect is the expected outcome of a step. Only set fields are checked.
type Expect struct {
	// OK is true when a validate step reports no violation, or a hints
	// step is not skipped.
	OK *bool `yaml:"ok,omitempty"`

	// Violation fields (validate).
	Kind  string `yaml:"kind,omitempty"`
	Line  *int   `yaml:"line,omitempty"`
	Start *int   `yaml:"start,omitempty"`
	End   *int   `yaml:"end,omitempty"`
	Field string `yaml:"field,omitempty"`

	// Cursor after the step.
	Cursor *int `yaml:"cursor,omitempty"`

	// Count of hints (hints).
	Count *int `yaml:"count,omitempty"`

	// Messages that must appear among the hint messages (hints).
	Messages []string `yaml:"messages,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a violation of Kind appears (at Line / Field if set)
	// - "trace_order": violation Kinds appear in order
	// - "trace_count": exactly Count violations (of Kind, if set)
	// - "final_state": final Cursor and number of logged Runs
	Type string `yaml:"type"`

	Kind  string   `yaml:"kind,omitempty"`
	Kinds []string `yaml:"kinds,omitempty"`
	Line  *int     `yaml:"line,omitempty"`
	Field string   `yaml:"field,omitempty"`
	Count int      `yaml:"count,omitempty"`

	Cursor *int `yaml:"cursor,omitempty"`
	Runs   *int `yaml:"runs,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// LayoutFile is resolved relative to the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.LayoutFile != "" && !filepath.IsAbs(scenario.LayoutFile) {
		scenario.LayoutFile = filepath.Join(filepath.Dir(path), scenario.LayoutFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Layout != "" && s.LayoutFile != "" {
		return fmt.Errorf("layout and layout_file are mutually exclusive")
	}

	if s.LayoutFile != "" {
		if _, err := os.Stat(s.LayoutFile); os.IsNotExist(err) {
			return fmt.Errorf("layout file not found: %s", s.LayoutFile)
		}
	}

	if s.PadTo < 0 {
		return fmt.Errorf("pad_to must not be negative")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.Action {
		case ActionValidate, ActionReset:
			if len(step.Ranges) > 0 {
				return fmt.Errorf("steps[%d]: ranges are only valid for hints", i)
			}
		case ActionHints:
		case "":
			return fmt.Errorf("steps[%d]: action is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) < 2 {
			return fmt.Errorf("assertions[%d]: trace_order needs at least 2 kinds", index)
		}
	case AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must not be negative", index)
		}
	case AssertFinalState:
		if a.Cursor == nil && a.Runs == nil {
			return fmt.Errorf("assertions[%d]: final_state needs cursor or runs", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
