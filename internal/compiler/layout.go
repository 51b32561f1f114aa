package compiler

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/IgorHorta/acparser/internal/layout"
)

//go:embed schema.cue
var schemaSource string

// LayoutSpec is a compiled layout that has not been registered yet.
// Positions are kept so structural validation can point back at the source.
type LayoutSpec struct {
	ID            string
	Name          string
	Version       string
	MaxLineLength int
	Records       []layout.RecordType

	Pos       token.Pos
	recordPos []token.Pos
	fieldPos  [][]token.Pos
}

// CompileLayout parses one layout value into a LayoutSpec.
// Uses the CUE Go API directly (not a CLI subprocess).
//
// The value is unified with the embedded #Layout schema first, so missing
// keys, wrong types and unknown keys surface as CUE errors with positions:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`layout: cielo: { ... }`)
//	spec, err := CompileLayout(v.LookupPath(cue.ParsePath("layout.cielo")))
func CompileLayout(v cue.Value) (*LayoutSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := v.Context().CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile layout schema: %w", err)
	}

	u := schema.LookupPath(cue.ParsePath("#Layout")).Unify(v)
	if err := u.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &LayoutSpec{Pos: v.Pos()}

	// Layout ID from the struct label (the path selector)
	if sels := v.Path().Selectors(); len(sels) > 0 {
		spec.ID = sels[len(sels)-1].String()
	}

	var err error
	if spec.Name, err = lookupString(u, "name"); err != nil {
		return nil, err
	}
	if spec.Version, err = lookupString(u, "version"); err != nil {
		return nil, err
	}
	if spec.MaxLineLength, err = lookupInt(u, "maxLineLength"); err != nil {
		return nil, err
	}

	if err := parseRecords(u, spec); err != nil {
		return nil, err
	}

	return spec, nil
}

// CompileAll compiles every entry under the top-level "layout" struct,
// in declaration order.
func CompileAll(v cue.Value) ([]*LayoutSpec, error) {
	layoutsVal := v.LookupPath(cue.ParsePath("layout"))
	if !layoutsVal.Exists() {
		return nil, &CompileError{
			Field:   "layout",
			Message: "no layout definitions found",
			Pos:     v.Pos(),
		}
	}

	iter, err := layoutsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []*LayoutSpec
	for iter.Next() {
		spec, err := CompileLayout(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// parseRecords extracts record types in declaration order.
func parseRecords(v cue.Value, spec *LayoutSpec) error {
	recordsIter, err := v.LookupPath(cue.ParsePath("records")).List()
	if err != nil {
		return formatCUEError(err)
	}

	for recordsIter.Next() {
		recVal := recordsIter.Value()

		var rt layout.RecordType
		if rt.Code, err = lookupString(recVal, "code"); err != nil {
			return err
		}
		if rt.Name, err = lookupString(recVal, "name"); err != nil {
			return err
		}
		if rt.Description, err = lookupString(recVal, "description"); err != nil {
			return err
		}
		if rt.LineLength, err = lookupInt(recVal, "lineLength"); err != nil {
			return err
		}

		fields, positions, err := parseFields(recVal)
		if err != nil {
			return err
		}
		rt.Fields = fields

		spec.Records = append(spec.Records, rt)
		spec.recordPos = append(spec.recordPos, recVal.Pos())
		spec.fieldPos = append(spec.fieldPos, positions)
	}

	return nil
}

// parseFields extracts the field specs of one record in declaration order.
func parseFields(recVal cue.Value) ([]layout.FieldSpec, []token.Pos, error) {
	iter, err := recVal.LookupPath(cue.ParsePath("fields")).List()
	if err != nil {
		return nil, nil, formatCUEError(err)
	}

	var fields []layout.FieldSpec
	var positions []token.Pos
	for iter.Next() {
		fv := iter.Value()

		var f layout.FieldSpec
		if f.Begin, err = lookupInt(fv, "begin"); err != nil {
			return nil, nil, err
		}
		if f.End, err = lookupInt(fv, "end"); err != nil {
			return nil, nil, err
		}
		if f.Name, err = lookupString(fv, "name"); err != nil {
			return nil, nil, err
		}
		if f.Description, err = lookupString(fv, "description"); err != nil {
			return nil, nil, err
		}

		// rule is optional: a field without one is descriptive-only
		ruleVal := fv.LookupPath(cue.ParsePath("rule"))
		if ruleVal.Exists() {
			rule, err := parseRule(ruleVal)
			if err != nil {
				return nil, nil, err
			}
			f.Rule = rule
		}

		fields = append(fields, f)
		positions = append(positions, fv.Pos())
	}

	return fields, positions, nil
}

// parseRule converts a #Rule value into a layout.Predicate.
func parseRule(v cue.Value) (*layout.Predicate, error) {
	kind, err := lookupString(v, "kind")
	if err != nil {
		return nil, err
	}

	p := &layout.Predicate{Kind: layout.PredicateKind(kind)}

	if p.Required, err = v.LookupPath(cue.ParsePath("required")).Bool(); err != nil {
		return nil, formatCUEError(err)
	}
	if p.Values, err = lookupStrings(v, "values"); err != nil {
		return nil, err
	}
	if p.Escapes, err = lookupStrings(v, "escapes"); err != nil {
		return nil, err
	}

	if patternVal := v.LookupPath(cue.ParsePath("pattern")); patternVal.Exists() {
		if p.Pattern, err = patternVal.String(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	if formatVal := v.LookupPath(cue.ParsePath("format")); formatVal.Exists() {
		format, err := formatVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		p.Format = layout.DateFormat(format)
	}

	return p, nil
}

func lookupString(v cue.Value, path string) (string, error) {
	s, err := v.LookupPath(cue.ParsePath(path)).String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func lookupInt(v cue.Value, path string) (int, error) {
	n, err := v.LookupPath(cue.ParsePath(path)).Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// lookupStrings decodes an optional list of strings.
func lookupStrings(v cue.Value, path string) ([]string, error) {
	listVal := v.LookupPath(cue.ParsePath(path))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}
