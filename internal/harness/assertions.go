package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s cursor=%d%s\n",
			event.Step, event.Action, event.Status, event.Cursor, describe(event.Violation))
	}

	return buf.String()
}

// assertTraceContains checks that a violation of the kind was reported,
// at the given line and field if set.
func assertTraceContains(result *Result, a Assertion) error {
	for _, v := range result.Violations() {
		if v.Kind != a.Kind {
			continue
		}
		if a.Line != nil && *a.Line != v.Line {
			continue
		}
		if a.Field != "" && a.Field != v.Field {
			continue
		}
		return nil
	}

	expected := "violation " + a.Kind
	if a.Line != nil {
		expected += fmt.Sprintf(" at line %d", *a.Line)
	}
	if a.Field != "" {
		expected += fmt.Sprintf(" in field %q", a.Field)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    result.Trace,
	}
}

// assertTraceOrder checks that violation kinds appear in the specified
// order. Other violations may appear in between.
func assertTraceOrder(result *Result, a Assertion) error {
	violations := result.Violations()

	next := 0
	for _, v := range violations {
		if next < len(a.Kinds) && v.Kind == a.Kinds[next] {
			next++
		}
	}

	if next < len(a.Kinds) {
		actual := make([]string, len(violations))
		for i, v := range violations {
			actual[i] = v.Kind
		}
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("kinds in order: %v", a.Kinds),
			Actual:   fmt.Sprintf("%v (missing %s)", actual, a.Kinds[next]),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertTraceCount checks the number of violations, of one kind if set.
func assertTraceCount(result *Result, a Assertion) error {
	count := 0
	for _, v := range result.Violations() {
		if a.Kind == "" || v.Kind == a.Kind {
			count++
		}
	}

	if count != a.Count {
		what := "violations"
		if a.Kind != "" {
			what = a.Kind + " violations"
		}
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d %s", a.Count, what),
			Actual:   fmt.Sprintf("%d %s", count, what),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertFinalState checks the final cursor and logged run count.
func assertFinalState(result *Result, a Assertion) error {
	if a.Cursor != nil && *a.Cursor != result.Cursor {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("cursor %d", *a.Cursor),
			Actual:   fmt.Sprintf("cursor %d", result.Cursor),
			Trace:    result.Trace,
		}
	}
	if a.Runs != nil && *a.Runs != result.Runs {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%d logged runs", *a.Runs),
			Actual:   fmt.Sprintf("%d logged runs", result.Runs),
			Trace:    result.Trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result, a)
		case AssertTraceCount:
			err = assertTraceCount(result, a)
		case AssertFinalState:
			err = assertFinalState(result, a)
		default:
			err = fmt.Errorf("unknown assertion type: %s", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
