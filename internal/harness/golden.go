package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/IgorHorta/acparser/internal/layout"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization. Zero-valued optional fields are omitted.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"step":   event.Step,
			"action": event.Action,
			"status": event.Status,
			"cursor": event.Cursor,
		}
		if event.RunID != "" {
			eventMap["run_id"] = event.RunID
			eventMap["seq"] = event.Seq
		}
		if v := event.Violation; v != nil {
			vm := map[string]any{
				"kind":    v.Kind,
				"message": v.Message,
				"line":    v.Line,
				"start":   v.Start,
				"end":     v.End,
			}
			if v.Field != "" {
				vm["field"] = v.Field
			}
			eventMap["violation"] = vm
		}
		if len(event.Hints) > 0 {
			hints := make([]any, len(event.Hints))
			for j, h := range event.Hints {
				hints[j] = map[string]any{
					"line":    h.Line,
					"start":   h.Start,
					"end":     h.End,
					"message": h.Message,
				}
			}
			eventMap["hints"] = hints
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
}

// MarshalTrace renders a scenario result as canonical JSON.
func MarshalTrace(name string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: name, Trace: result.Trace}
	return layout.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
