package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/IgorHorta/acparser/internal/acquirers"
	"github.com/IgorHorta/acparser/internal/engine"
	"github.com/IgorHorta/acparser/internal/layout"
	"github.com/IgorHorta/acparser/internal/source"
	"github.com/IgorHorta/acparser/internal/store"
	"github.com/IgorHorta/acparser/internal/testutil"
)

// Harness is the test execution engine.
// It runs one scenario against a fresh validator, scan state and store.
type Harness struct {
	store     *store.Store
	validator *engine.Validator
	state     *engine.ScanState
	doc       *source.Document
	hash      string
	logger    *slog.Logger
}

// Option configures a run.
type Option func(*Harness)

// WithLogger routes engine logging to l.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the layout (built-in or layout_file)
// 2. Build the document from the scenario lines
// 3. Execute steps, checking each expect clause
// 4. Evaluate assertions against the trace and store
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	reg, err := loadLayout(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	if h.hash, err = layout.Hash(reg); err != nil {
		return nil, fmt.Errorf("failed to hash layout: %w", err)
	}

	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDGenerator("run")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h.store = st
	h.validator = engine.New(reg, engine.WithLogger(h.logger))
	h.state = engine.NewScanState()
	h.doc = source.FromString(scenario.Name, strings.Join(padLines(scenario.Lines, scenario.PadTo), "\n"))

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		event, err := h.executeStep(ctx, i+1, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		result.Trace = append(result.Trace, event)
		for _, msg := range checkExpect(i+1, step.Expect, event) {
			result.AddError(msg)
		}
	}

	result.Cursor = h.state.Cursor
	runs, err := st.ListRuns(ctx, h.doc.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	result.Runs = len(runs)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// executeStep runs one step and records its trace event.
func (h *Harness) executeStep(ctx context.Context, n int, step Step) (TraceEvent, error) {
	event := TraceEvent{Step: n, Action: step.Action, Status: StatusOK}

	switch step.Action {
	case ActionValidate:
		start := h.state.Cursor
		err := h.validator.ValidateFile(h.state, h.doc)

		run := store.Run{
			Document:      h.doc.Name,
			Layout:        h.validator.Registry().ID,
			LayoutHash:    h.hash,
			EngineVersion: layout.EngineVersion,
			StartCursor:   start,
			EndCursor:     h.state.Cursor,
			LineCount:     h.doc.LineCount(),
		}
		if err != nil {
			v, ok := engine.AsViolation(err)
			if !ok {
				return event, err
			}
			event.Status = StatusViolation
			event.Violation = traceViolation(v)
			run.Violation = &store.RunViolation{
				Kind:    string(v.Kind),
				Message: v.Message,
				Line:    v.Address.Line,
				Start:   v.Address.Start,
				End:     v.Address.End,
				Field:   v.Field,
			}
		}

		recorded, err := h.store.RecordRun(ctx, run)
		if err != nil {
			return event, err
		}
		event.RunID = recorded.ID
		event.Seq = recorded.Seq

		if _, err := h.store.SaveCursor(ctx, store.Cursor{
			Document:   h.doc.Name,
			Layout:     run.Layout,
			LayoutHash: h.hash,
			Cursor:     h.state.Cursor,
		}); err != nil {
			return event, err
		}

	case ActionHints:
		ranges := make([]engine.LineRange, len(step.Ranges))
		for i, r := range step.Ranges {
			ranges[i] = engine.LineRange{Start: r.Start, End: r.End}
		}
		hints, ok := h.validator.ResolveHints(h.state, h.doc, ranges)
		if !ok {
			event.Status = StatusSkipped
		}
		for _, hint := range hints {
			event.Hints = append(event.Hints, HintTrace{
				Line:    hint.Address.Line,
				Start:   hint.Address.Start,
				End:     hint.Address.End,
				Message: hint.Message(),
			})
		}

	case ActionReset:
		h.state.Reset()
		if err := h.store.ResetCursor(ctx, h.doc.Name, h.validator.Registry().ID); err != nil {
			return event, err
		}

	default:
		return event, fmt.Errorf("unknown action %q", step.Action)
	}

	event.Cursor = h.state.Cursor
	return event, nil
}

// checkExpect compares a step's trace event with its expect clause.
func checkExpect(n int, exp *Expect, ev TraceEvent) []string {
	if exp == nil {
		return nil
	}

	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("step %d (%s): ", n, ev.Action)+fmt.Sprintf(format, args...))
	}

	if exp.OK != nil {
		ok := ev.Status == StatusOK
		if ok != *exp.OK {
			fail("expected ok=%t, got status %s%s", *exp.OK, ev.Status, describe(ev.Violation))
		}
	}

	if exp.Kind != "" || exp.Line != nil || exp.Start != nil || exp.End != nil || exp.Field != "" {
		v := ev.Violation
		if v == nil {
			fail("expected a violation, got none")
		} else {
			if exp.Kind != "" && exp.Kind != v.Kind {
				fail("expected kind %s, got %s", exp.Kind, v.Kind)
			}
			if exp.Line != nil && *exp.Line != v.Line {
				fail("expected line %d, got %d", *exp.Line, v.Line)
			}
			if exp.Start != nil && *exp.Start != v.Start {
				fail("expected start %d, got %d", *exp.Start, v.Start)
			}
			if exp.End != nil && *exp.End != v.End {
				fail("expected end %d, got %d", *exp.End, v.End)
			}
			if exp.Field != "" && exp.Field != v.Field {
				fail("expected field %q, got %q", exp.Field, v.Field)
			}
		}
	}

	if exp.Cursor != nil && *exp.Cursor != ev.Cursor {
		fail("expected cursor %d, got %d", *exp.Cursor, ev.Cursor)
	}

	if exp.Count != nil && *exp.Count != len(ev.Hints) {
		fail("expected %d hints, got %d", *exp.Count, len(ev.Hints))
	}

	for _, want := range exp.Messages {
		found := false
		for _, h := range ev.Hints {
			if h.Message == want {
				found = true
				break
			}
		}
		if !found {
			fail("hint message %q not found", want)
		}
	}

	return errs
}

func describe(v *ViolationTrace) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(" (%s at line %d: %s)", v.Kind, v.Line, v.Message)
}

func traceViolation(v *engine.Violation) *ViolationTrace {
	return &ViolationTrace{
		Kind:    string(v.Kind),
		Message: v.Message,
		Line:    v.Address.Line,
		Start:   v.Address.Start,
		End:     v.Address.End,
		Field:   v.Field,
	}
}

// loadLayout resolves the scenario's layout.
func loadLayout(s *Scenario) (*layout.Registry, error) {
	if s.LayoutFile == "" {
		id := s.Layout
		if id == "" {
			id = acquirers.DefaultLayout
		}
		return acquirers.Lookup(id)
	}

	data, err := os.ReadFile(s.LayoutFile)
	if err != nil {
		return nil, err
	}
	regs, err := acquirers.Compile(s.LayoutFile, string(data))
	if err != nil {
		return nil, err
	}
	if len(regs) != 1 {
		return nil, fmt.Errorf("%s: expected exactly one layout, found %d", s.LayoutFile, len(regs))
	}
	return regs[0], nil
}

// padLines right-pads non-empty lines to width characters.
func padLines(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			continue
		}
		out[i] = testutil.Pad(l, width)
	}
	return out
}
