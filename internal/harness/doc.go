// Package harness provides conformance testing for acquirer layouts.
//
// A scenario pairs a layout with a small settlement file and a sequence of
// engine calls, then checks what the engine reported.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	layout: cielo            # built-in layout, or
//	layout_file: mini.cue    # CUE file relative to the scenario
//	pad_to: 250              # optional: right-pad non-empty lines
//	lines:
//	  - "0..."
//	  - ""
//	steps:
//	  - action: validate
//	    expect:
//	      ok: false
//	      kind: FIELD_VALIDATION_FAILURE
//	      line: 0
//	      start: 35
//	      end: 42
//	      field: Sequência
//	      cursor: 1
//	  - action: hints
//	    ranges: [{start: 0, end: 1}]
//	    expect: {count: 12}
//	  - action: reset
//	assertions:
//	  - type: trace_contains
//	    kind: FIELD_VALIDATION_FAILURE
//	  - type: final_state
//	    cursor: 0
//	    runs: 1
//
// # Steps
//
//   - validate: runs a full scan from the current cursor
//   - hints: resolves hints for the given line ranges
//   - reset: rewinds the cursor to the first line
//
// # Assertion Types
//
//   - trace_contains: a validate step reported a violation of the kind
//     (optionally at a line or field)
//   - trace_order: violation kinds appear in the given order
//   - trace_count: exactly N violations (of a kind, if given)
//   - final_state: final cursor and number of logged runs
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory store with sequential run
// IDs (testutil.SequentialIDGenerator), so traces are byte-identical across
// runs and can be compared against golden files.
package harness
