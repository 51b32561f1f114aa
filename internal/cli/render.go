package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/IgorHorta/acparser/internal/engine"
)

// DefaultSnippetContext is the number of columns shown on each side of a
// violation span. Settlement lines are 250 columns wide; showing all of it
// buries the caret.
const DefaultSnippetContext = 24

// SnippetRenderer formats violations as annotated source snippets:
//
//	error[FIELD_VALIDATION_FAILURE]: Sequência Erro: valor obrigatório
//	  --> extrato.txt:1:36
//	   |
//	 1 | ...0000000000000000000       CIELO  ...
//	   |                         ^^^^^^^ Sequência
//	   |
type SnippetRenderer struct {
	// Context is the number of columns kept around the span.
	// Zero or less shows the whole line.
	Context int
}

// Render writes one violation found on line text of file to w.
func (r *SnippetRenderer) Render(w io.Writer, file, text string, v *engine.Violation) error {
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	ew.printf("error[%s]: %s\n", v.Kind, v.Message)
	ew.printf("  --> %s:%d:%d\n", file, v.Address.Line+1, v.Address.Start+1)

	lineStr := fmt.Sprintf("%d", v.Address.Line+1)
	pad := strings.Repeat(" ", len(lineStr))

	display, offset, width := r.window([]rune(text), v.Address.Start, v.Address.End)

	ew.printf(" %s |\n", pad)
	ew.printf(" %s | %s\n", lineStr, display)
	ew.printf(" %s | %s%s", pad, strings.Repeat(" ", offset), strings.Repeat("^", width))
	if label := snippetLabel(v); label != "" {
		ew.printf(" %s", label)
	}
	ew.print("\n")
	ew.printf(" %s |\n", pad)

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// window clips the line around [start, end) and returns the text to show,
// the display offset of the span within it and the underline width.
func (r *SnippetRenderer) window(runes []rune, start, end int) (string, int, int) {
	end = min(end, len(runes))
	start = min(max(start, 0), end)

	from, to := 0, len(runes)
	if r.Context > 0 {
		from = max(start-r.Context, 0)
		to = min(end+r.Context, len(runes))
	}

	var b strings.Builder
	if from > 0 {
		b.WriteString("...")
	}
	lead := b.Len()
	b.WriteString(string(runes[from:to]))
	if to < len(runes) {
		b.WriteString("...")
	}

	offset := lead + runewidth.StringWidth(string(runes[from:start]))
	width := max(runewidth.StringWidth(string(runes[start:end])), 1)
	return b.String(), offset, width
}

// snippetLabel is the short text printed after the underline.
func snippetLabel(v *engine.Violation) string {
	switch v.Kind {
	case engine.KindFieldValidation:
		return v.Field
	case engine.KindLineLengthMismatch:
		return fmt.Sprintf("%d de %d caracteres", v.Actual, v.Expected)
	case engine.KindUnknownRecordType:
		return "tipo de registro desconhecido"
	case engine.KindBlankLine:
		return "linha vazia"
	}
	return ""
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}
