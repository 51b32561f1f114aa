package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/IgorHorta/acparser/internal/layout"
)

// Line is one text line of a settlement file.
type Line struct {
	Index int    // 0-based position in the source
	Text  string // raw text without the line terminator
}

// Len returns the line length in characters.
func (l Line) Len() int {
	return utf8.RuneCountInString(l.Text)
}

// IsBlank reports whether the line is empty or whitespace-only.
func (l Line) IsBlank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// LineSource is an ordered, addressable sequence of lines, e.g. an open
// document. The engine never opens files itself.
type LineSource interface {
	LineCount() int
	LineAt(i int) Line
}

// Lines is an in-memory LineSource.
type Lines []string

// LineCount implements LineSource.
func (l Lines) LineCount() int { return len(l) }

// LineAt implements LineSource.
func (l Lines) LineAt(i int) Line { return Line{Index: i, Text: l[i]} }

// Resolve selects the record type of a line from its first character.
// Fails with a KindUnknownRecordType violation spanning the whole line.
func Resolve(reg *layout.Registry, line Line) (*layout.RecordType, error) {
	code, _ := utf8.DecodeRuneInString(line.Text)
	if line.Text != "" {
		if rt, ok := reg.Lookup(code); ok {
			return rt, nil
		}
	}

	var shown string
	if line.Text != "" {
		shown = string(code)
	}
	return nil, &Violation{
		Kind:    KindUnknownRecordType,
		Message: fmt.Sprintf("Não foi encontrado um tipo para o registro de valor %q", shown),
		Address: LineAddress{Line: line.Index, Start: 0, End: line.Len()},
		Code:    shown,
	}
}

// ValidateLine checks one line against its record type.
//
// The length check runs first and spans the whole line. Fields are then
// evaluated in declaration order, not column order, and the first rejected
// field is reported with its column range. Fields without a rule are skipped.
func ValidateLine(line Line, rt *layout.RecordType) error {
	runes := []rune(line.Text)
	if len(runes) != rt.LineLength {
		return &Violation{
			Kind: KindLineLengthMismatch,
			Message: fmt.Sprintf("São esperados %d caracteres para a linha %d (encontrados %d)",
				rt.LineLength, line.Index+1, len(runes)),
			Address:  LineAddress{Line: line.Index, Start: 0, End: len(runes)},
			Expected: rt.LineLength,
			Actual:   len(runes),
		}
	}

	for _, field := range rt.Fields {
		if field.Rule == nil {
			continue
		}
		addr := LineAddress{Line: line.Index, Start: field.Begin - 1, End: field.End}

		value, ok := field.Slice(runes)
		if !ok {
			return &Violation{
				Kind:    KindFieldValidation,
				Message: fmt.Sprintf("%s Erro: campo fora dos limites da linha", field.Name),
				Address: addr,
				Field:   field.Name,
			}
		}

		if err := Evaluate(field.Rule, value); err != nil {
			return &Violation{
				Kind:    KindFieldValidation,
				Message: fmt.Sprintf("%s Erro: %s", field.Name, err.Error()),
				Address: addr,
				Field:   field.Name,
				Cause:   err,
			}
		}
	}

	return nil
}
