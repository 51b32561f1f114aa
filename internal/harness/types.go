package harness

// TraceEvent records the outcome of one scenario step.
type TraceEvent struct {
	Step      int             `json:"step"` // 1-based
	Action    string          `json:"action"`
	Status    string          `json:"status"` // "ok", "violation" or "skipped"
	Cursor    int             `json:"cursor"`
	RunID     string          `json:"run_id,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Violation *ViolationTrace `json:"violation,omitempty"`
	Hints     []HintTrace     `json:"hints,omitempty"`
}

// ViolationTrace is the reported violation of a validate step.
type ViolationTrace struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Field   string `json:"field,omitempty"`
}

// HintTrace is one hint of a hints step.
type HintTrace struct {
	Line    int    `json:"line"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Message string `json:"message"`
}

// Trace statuses.
const (
	StatusOK        = "ok"
	StatusViolation = "violation"
	StatusSkipped   = "skipped"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Cursor is the scan cursor after the last step.
	Cursor int `json:"cursor"`

	// Runs is the number of validate runs logged to the store.
	Runs int `json:"runs"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Violations returns the violations of every validate step, in order.
func (r *Result) Violations() []ViolationTrace {
	var out []ViolationTrace
	for _, ev := range r.Trace {
		if ev.Violation != nil {
			out = append(out, *ev.Violation)
		}
	}
	return out
}
