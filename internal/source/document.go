// Package source turns settlement files into line sources for the engine.
package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/IgorHorta/acparser/internal/engine"
)

// Document is an in-memory settlement file split into lines.
// It implements engine.LineSource and is safe for concurrent reads.
type Document struct {
	Name  string
	lines []string
}

// Read builds a Document from r.
//
// Lines are split on "\n" with a trailing "\r" removed, and each line is
// NFC-normalised so a composed and a decomposed accent occupy one column.
// Input that ends with a newline yields a final empty line.
func Read(name string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return FromString(name, string(data)), nil
}

// Open reads the file at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return Read(path, f)
}

// FromString builds a Document from text already in memory.
func FromString(name, text string) *Document {
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = norm.NFC.String(strings.TrimSuffix(l, "\r"))
	}
	return &Document{Name: name, lines: lines}
}

// LineCount implements engine.LineSource.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// LineAt implements engine.LineSource.
func (d *Document) LineAt(i int) engine.Line {
	return engine.Line{Index: i, Text: d.lines[i]}
}

// Lines returns a copy of the document lines.
func (d *Document) Lines() []string {
	return append([]string(nil), d.lines...)
}
