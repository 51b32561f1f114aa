package engine

import (
	"errors"
	"fmt"
)

// Kind categorizes a violation.
type Kind string

const (
	// KindUnknownRecordType: the first character matches no registered record code.
	KindUnknownRecordType Kind = "UNKNOWN_RECORD_TYPE"

	// KindLineLengthMismatch: the line length differs from the record type's length.
	KindLineLengthMismatch Kind = "LINE_LENGTH_MISMATCH"

	// KindFieldValidation: a field predicate rejected its value.
	KindFieldValidation Kind = "FIELD_VALIDATION_FAILURE"

	// KindBlankLine: a blank line that is not the last line of the file.
	KindBlankLine Kind = "BLANK_LINE"
)

// LineAddress identifies a contiguous span on one line.
// Line is 0-based; Start and End are 0-based, half-open character columns.
type LineAddress struct {
	Line  int `json:"line"`
	Start int `json:"start"`
	End   int `json:"end"`
}

func (a LineAddress) String() string {
	return fmt.Sprintf("%d:%d-%d", a.Line+1, a.Start+1, a.End)
}

// Violation is the single positioned failure reported for a line.
type Violation struct {
	Kind    Kind        `json:"kind"`
	Message string      `json:"message"`
	Address LineAddress `json:"address"`

	// Field is the failing field name (KindFieldValidation only).
	Field string `json:"field,omitempty"`

	// Code is the offending discriminator (KindUnknownRecordType only).
	Code string `json:"code,omitempty"`

	// Expected and Actual line lengths (KindLineLengthMismatch only).
	Expected int `json:"expected,omitempty"`
	Actual   int `json:"actual,omitempty"`

	// Cause is the predicate failure behind a field violation.
	Cause error `json:"-"`
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s (line %s)", v.Kind, v.Message, v.Address)
}

// Unwrap returns the predicate failure, if any.
func (v *Violation) Unwrap() error {
	return v.Cause
}

// AsViolation extracts a *Violation from err.
// Uses errors.As to handle wrapped errors.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// KindOf returns the violation kind of err, or "" if err is not a violation.
func KindOf(err error) Kind {
	if v, ok := AsViolation(err); ok {
		return v.Kind
	}
	return ""
}

// IsKind reports whether err is a violation of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
