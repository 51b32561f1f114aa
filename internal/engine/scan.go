package engine

import (
	"io"
	"log/slog"

	"github.com/IgorHorta/acparser/internal/layout"
)

// ScanState is the resumable progress of a full scan plus the re-entrancy
// flag of the hint pass. The caller owns it and passes it into every call.
type ScanState struct {
	// Cursor is the index of the next line ValidateFile will check.
	Cursor int

	annotating bool
}

// NewScanState returns a state positioned at the first line.
func NewScanState() *ScanState {
	return &ScanState{}
}

// Reset rewinds the cursor to the first line.
func (s *ScanState) Reset() {
	s.Cursor = 0
}

// Annotating reports whether a hint pass is in flight.
func (s *ScanState) Annotating() bool {
	return s.annotating
}

// Validator runs full scans and hint passes against one registry.
// The registry is shared read-only; a Validator holds no scan progress.
type Validator struct {
	registry *layout.Registry
	logger   *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for scan progress.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// New creates a Validator for the registry.
func New(reg *layout.Registry, opts ...Option) *Validator {
	v := &Validator{
		registry: reg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Registry returns the layout this validator checks against.
func (v *Validator) Registry() *layout.Registry {
	return v.registry
}

// ValidateLine resolves the record type of a line and validates it.
func (v *Validator) ValidateLine(line Line) error {
	rt, err := Resolve(v.registry, line)
	if err != nil {
		return err
	}
	return ValidateLine(line, rt)
}

// ValidateFile scans src from state.Cursor and stops at the first violation.
//
// A blank line is accepted only as the last line of the source; anywhere else
// it fails with KindBlankLine spanning up to the registry's maximum line
// length.
//
// On failure the cursor is left one past the failing line, so the next call
// resumes with the following line. On success the cursor is left at
// src.LineCount(), and repeated calls succeed without rescanning.
func (v *Validator) ValidateFile(state *ScanState, src LineSource) error {
	total := src.LineCount()
	if state.Cursor < 0 {
		state.Cursor = 0
	}

	v.logger.Debug("scan started", "layout", v.registry.ID, "cursor", state.Cursor, "lines", total)

	for state.Cursor < total {
		i := state.Cursor
		line := src.LineAt(i)
		v.logger.Debug("scanning line", "line", i)

		if line.IsBlank() {
			if i >= total-1 {
				state.Cursor = total
				break
			}
			return v.stop(state, i, &Violation{
				Kind:    KindBlankLine,
				Message: "O arquivo possui linha vazia",
				Address: LineAddress{Line: i, Start: 0, End: v.registry.MaxLineLength},
			})
		}

		if err := v.ValidateLine(line); err != nil {
			return v.stop(state, i, err)
		}

		state.Cursor++
	}

	v.logger.Info("scan finished", "layout", v.registry.ID, "lines", total)
	return nil
}

// stop records a failure at line i and advances the cursor past it.
func (v *Validator) stop(state *ScanState, i int, err error) error {
	state.Cursor = i + 1
	v.logger.Info("scan stopped", "layout", v.registry.ID, "line", i, "kind", KindOf(err), "error", err)
	return err
}
