package compiler

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"cuelang.org/go/cue/token"

	"github.com/IgorHorta/acparser/internal/layout"
)

// Validation error codes (E100-E199)
const (
	// Layout errors (E100-E109)
	ErrLayoutNoRecords = "E101" // at least one record type required
	ErrMaxLineLength   = "E102" // maxLineLength must be positive
	ErrDuplicateCode   = "E105" // two record types share a discriminator

	// Record and field errors (E120-E129)
	ErrFieldBounds       = "E120" // 1 <= begin <= end <= lineLength violated
	ErrRecordCode        = "E121" // code is not exactly one character
	ErrLineLength        = "E122" // lineLength exceeds maxLineLength
	ErrInvalidPattern    = "E123" // regex rule does not compile
	ErrLiteralNoValues   = "E124" // literal rule without values
	ErrDateNoFormat      = "E125" // date rule without a known format
	ErrUnknownRuleKind   = "E126" // rule kind not supported
	ErrCodeFieldMismatch = "E127" // column 1 literal disagrees with the record code
)

// ValidationError represents a structural layout error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the structural rules CUE cannot express on a compiled layout.
// Returns all errors found (does not fail-fast).
//
// Overlapping field ranges are allowed: layouts reuse columns under different
// names across versions.
func Validate(spec *LayoutSpec) []ValidationError {
	var errs []ValidationError

	if len(spec.Records) == 0 {
		errs = append(errs, ValidationError{
			Field:   "records",
			Message: "at least one record type is required",
			Code:    ErrLayoutNoRecords,
			Line:    lineOf(spec.Pos),
		})
	}
	if spec.MaxLineLength <= 0 {
		errs = append(errs, ValidationError{
			Field:   "maxLineLength",
			Message: fmt.Sprintf("maxLineLength must be positive, got %d", spec.MaxLineLength),
			Code:    ErrMaxLineLength,
			Line:    lineOf(spec.Pos),
		})
	}

	seen := make(map[string]string)
	for i, rt := range spec.Records {
		path := fmt.Sprintf("records[%d]", i)
		line := lineOf(spec.recordPosAt(i))

		if utf8.RuneCountInString(rt.Code) != 1 {
			errs = append(errs, ValidationError{
				Field:   path + ".code",
				Message: fmt.Sprintf("record %q: code %q must be exactly one character", rt.Name, rt.Code),
				Code:    ErrRecordCode,
				Line:    line,
			})
		} else if prev, dup := seen[rt.Code]; dup {
			errs = append(errs, ValidationError{
				Field:   path + ".code",
				Message: fmt.Sprintf("duplicate record code %q: %q and %q", rt.Code, prev, rt.Name),
				Code:    ErrDuplicateCode,
				Line:    line,
			})
		} else {
			seen[rt.Code] = rt.Name
		}

		if spec.MaxLineLength > 0 && rt.LineLength > spec.MaxLineLength {
			errs = append(errs, ValidationError{
				Field:   path + ".lineLength",
				Message: fmt.Sprintf("record %q: lineLength %d exceeds maxLineLength %d", rt.Name, rt.LineLength, spec.MaxLineLength),
				Code:    ErrLineLength,
				Line:    line,
			})
		}

		for j, f := range rt.Fields {
			errs = append(errs, validateField(rt, f, fmt.Sprintf("%s.fields[%d]", path, j), lineOf(spec.fieldPosAt(i, j)))...)
		}
	}

	return errs
}

// validateField checks column bounds and the rule parameters of one field.
func validateField(rt layout.RecordType, f layout.FieldSpec, path string, line int) []ValidationError {
	var errs []ValidationError

	if f.Begin < 1 || f.Begin > f.End || f.End > rt.LineLength {
		errs = append(errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("field %q: columns %d-%d outside 1-%d", f.Name, f.Begin, f.End, rt.LineLength),
			Code:    ErrFieldBounds,
			Line:    line,
		})
	}

	if f.Rule == nil {
		return errs
	}

	switch f.Rule.Kind {
	case layout.KindLiteral:
		if len(f.Rule.Values) == 0 {
			errs = append(errs, ValidationError{
				Field:   path + ".rule.values",
				Message: fmt.Sprintf("field %q: literal rule requires values", f.Name),
				Code:    ErrLiteralNoValues,
				Line:    line,
			})
		}
		if f.Begin == 1 && f.End == 1 && !contains(f.Rule.Values, rt.Code) {
			errs = append(errs, ValidationError{
				Field:   path + ".rule.values",
				Message: fmt.Sprintf("field %q: discriminator column rejects record code %q", f.Name, rt.Code),
				Code:    ErrCodeFieldMismatch,
				Line:    line,
			})
		}
	case layout.KindRegex:
		if _, err := regexp.Compile(f.Rule.Pattern); err != nil || f.Rule.Pattern == "" {
			errs = append(errs, ValidationError{
				Field:   path + ".rule.pattern",
				Message: fmt.Sprintf("field %q: invalid pattern %q", f.Name, f.Rule.Pattern),
				Code:    ErrInvalidPattern,
				Line:    line,
			})
		}
	case layout.KindDate:
		if _, ok := f.Rule.Format.GoLayout(); !ok {
			errs = append(errs, ValidationError{
				Field:   path + ".rule.format",
				Message: fmt.Sprintf("field %q: date rule requires one of YYYYMMDD, YYMMDD, HHmmss", f.Name),
				Code:    ErrDateNoFormat,
				Line:    line,
			})
		}
	case layout.KindAlphanumeric, layout.KindInteger, layout.KindText:
	default:
		errs = append(errs, ValidationError{
			Field:   path + ".rule.kind",
			Message: fmt.Sprintf("field %q: unsupported rule kind %q", f.Name, f.Rule.Kind),
			Code:    ErrUnknownRuleKind,
			Line:    line,
		})
	}

	return errs
}

// Build validates a compiled layout and registers it.
// Returns the validation errors, if any, instead of a registry.
func Build(spec *LayoutSpec) (*layout.Registry, []ValidationError) {
	if errs := Validate(spec); len(errs) > 0 {
		return nil, errs
	}

	reg, err := layout.NewRegistry(spec.ID, spec.Name, spec.Version, spec.MaxLineLength, spec.Records...)
	if err != nil {
		return nil, []ValidationError{{
			Field:   "records",
			Message: err.Error(),
			Code:    ErrDuplicateCode,
		}}
	}
	return reg, nil
}

func (s *LayoutSpec) recordPosAt(i int) token.Pos {
	if i < len(s.recordPos) {
		return s.recordPos[i]
	}
	return token.NoPos
}

func (s *LayoutSpec) fieldPosAt(i, j int) token.Pos {
	if i < len(s.fieldPos) && j < len(s.fieldPos[i]) {
		return s.fieldPos[i][j]
	}
	return token.NoPos
}

// lineOf extracts the line number from a token.Pos.
func lineOf(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
