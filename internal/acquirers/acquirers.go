// Package acquirers ships the built-in acquirer layouts.
//
// Layouts are CUE artifacts embedded at build time and compiled through the
// same path as user-supplied layout directories, so a built-in layout gets
// the same structural checks as any other.
package acquirers

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/IgorHorta/acparser/internal/compiler"
	"github.com/IgorHorta/acparser/internal/layout"
)

// DefaultLayout is the layout used when none is selected.
const DefaultLayout = "cielo"

//go:embed cielo.cue
var cieloSource string

var (
	builtinOnce sync.Once
	builtin     []*layout.Registry
	builtinErr  error
)

// Builtin returns the embedded layouts in declaration order.
// They are compiled once per process.
func Builtin() ([]*layout.Registry, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = Compile("cielo.cue", cieloSource)
	})
	return builtin, builtinErr
}

// Lookup returns the built-in layout with the given ID.
func Lookup(id string) (*layout.Registry, error) {
	regs, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, reg := range regs {
		if reg.ID == id {
			return reg, nil
		}
	}
	return nil, fmt.Errorf("unknown layout %q", id)
}

// Compile compiles CUE source holding one or more layouts under the
// top-level "layout" struct.
func Compile(filename, src string) ([]*layout.Registry, error) {
	v := cuecontext.New().CompileString(src, cue.Filename(filename))
	return Build(v)
}

// Build compiles and registers every layout in v.
// Structural errors of all layouts are reported together.
func Build(v cue.Value) ([]*layout.Registry, error) {
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile layouts: %w", err)
	}

	specs, err := compiler.CompileAll(v)
	if err != nil {
		return nil, err
	}

	var (
		regs []*layout.Registry
		errs LayoutErrors
	)
	for _, spec := range specs {
		reg, verrs := compiler.Build(spec)
		if len(verrs) > 0 {
			errs = append(errs, LayoutError{Layout: spec.ID, Errors: verrs})
			continue
		}
		regs = append(regs, reg)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return regs, nil
}

// LayoutError groups the structural errors of one layout.
type LayoutError struct {
	Layout string
	Errors []compiler.ValidationError
}

// LayoutErrors is returned by Build when at least one layout is invalid.
type LayoutErrors []LayoutError

func (e LayoutErrors) Error() string {
	count := 0
	for _, le := range e {
		count += len(le.Errors)
	}
	if count == 1 {
		return fmt.Sprintf("layout %s: %s", e[0].Layout, e[0].Errors[0].Error())
	}
	return fmt.Sprintf("%d structural errors in %d layout(s)", count, len(e))
}
