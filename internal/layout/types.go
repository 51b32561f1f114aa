package layout

import (
	"fmt"
	"strings"
)

// PredicateKind selects the check applied to a field value.
type PredicateKind string

const (
	// KindLiteral accepts one of an enumerated set of exact strings.
	KindLiteral PredicateKind = "literal"
	// KindAlphanumeric accepts ^[A-Za-z0-9]*$.
	KindAlphanumeric PredicateKind = "alphanumeric"
	// KindRegex accepts values matching an author-supplied RE2 pattern.
	KindRegex PredicateKind = "regex"
	// KindInteger accepts base-10 integers of any magnitude.
	KindInteger PredicateKind = "integer"
	// KindDate accepts dates or times in one strict DateFormat.
	KindDate PredicateKind = "date"
	// KindText accepts any content; only the Required flag constrains it.
	KindText PredicateKind = "text"
)

// ValidKinds lists the predicate kinds a layout may use.
var ValidKinds = map[PredicateKind]bool{
	KindLiteral:      true,
	KindAlphanumeric: true,
	KindRegex:        true,
	KindInteger:      true,
	KindDate:         true,
	KindText:         true,
}

// DateFormat is a strict, separator-free date or time pattern.
type DateFormat string

const (
	FormatYYYYMMDD DateFormat = "YYYYMMDD"
	FormatYYMMDD   DateFormat = "YYMMDD"
	FormatHHmmss   DateFormat = "HHmmss"
)

// goLayouts maps each DateFormat to its time.Parse reference layout.
var goLayouts = map[DateFormat]string{
	FormatYYYYMMDD: "20060102",
	FormatYYMMDD:   "060102",
	FormatHHmmss:   "150405",
}

// GoLayout returns the time.Parse layout for f.
func (f DateFormat) GoLayout() (string, bool) {
	l, ok := goLayouts[f]
	return l, ok
}

// Width is the number of characters a value in this format occupies.
func (f DateFormat) Width() int {
	return len(f)
}

// Predicate describes how one field value is checked.
//
// Only the parameters relevant to Kind are read:
//   - Values for KindLiteral
//   - Pattern for KindRegex
//   - Format and Escapes for KindDate
type Predicate struct {
	Kind     PredicateKind `json:"kind"`
	Required bool          `json:"required"`
	Values   []string      `json:"values,omitempty"`
	Pattern  string        `json:"pattern,omitempty"`
	Format   DateFormat    `json:"format,omitempty"`
	Escapes  []string      `json:"escapes,omitempty"`
}

// String renders the predicate for listings, e.g. "date(YYMMDD) required".
func (p *Predicate) String() string {
	var b strings.Builder
	b.WriteString(string(p.Kind))
	switch p.Kind {
	case KindLiteral:
		fmt.Fprintf(&b, "%q", p.Values)
	case KindRegex:
		fmt.Fprintf(&b, "(/%s/)", p.Pattern)
	case KindDate:
		fmt.Fprintf(&b, "(%s)", p.Format)
		if len(p.Escapes) > 0 {
			fmt.Fprintf(&b, " escapes%q", p.Escapes)
		}
	}
	if p.Required {
		b.WriteString(" required")
	}
	return b.String()
}

// FieldSpec is one column range of a record type.
// A nil Rule makes the field descriptive-only: it never rejects a line.
type FieldSpec struct {
	Begin       int        `json:"begin"` // 1-based, inclusive
	End         int        `json:"end"`   // 1-based, inclusive
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Rule        *Predicate `json:"rule,omitempty"`
}

// Width returns the number of columns the field spans.
func (f FieldSpec) Width() int {
	return f.End - f.Begin + 1
}

// Slice extracts the field value from a line given as runes.
// Returns false if the line is too short to hold the field.
func (f FieldSpec) Slice(line []rune) (string, bool) {
	if f.Begin < 1 || f.End < f.Begin || f.End > len(line) {
		return "", false
	}
	return string(line[f.Begin-1 : f.End]), true
}

// RecordType is the schema of one record variant, selected by Code.
type RecordType struct {
	Code        string      `json:"code"` // exactly one character
	Name        string      `json:"name"`
	Description string      `json:"description"`
	LineLength  int         `json:"line_length"`
	Fields      []FieldSpec `json:"fields"`
}
