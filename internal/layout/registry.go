package layout

import (
	"fmt"
	"unicode/utf8"
)

// Registry is the ordered set of record types of one acquirer layout.
// It is built once from configuration and never mutated afterwards.
type Registry struct {
	ID            string // layout identifier, e.g. "cielo"
	Name          string
	Version       string
	MaxLineLength int

	records []*RecordType        // declaration order
	byCode  map[rune]*RecordType // discriminator index
}

// DuplicateCodeError reports two record types sharing a discriminator.
type DuplicateCodeError struct {
	Code   string
	First  string
	Second string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("duplicate record code %q: %q and %q", e.Code, e.First, e.Second)
}

// NewRegistry builds a Registry from record types in declaration order.
//
// Duplicate discriminator codes are rejected with a *DuplicateCodeError
// rather than resolved by declaration order. Codes must be exactly one
// character long.
//
// The record types are copied; later changes to the arguments do not
// affect the registry.
func NewRegistry(id, name, version string, maxLineLength int, records ...RecordType) (*Registry, error) {
	r := &Registry{
		ID:            id,
		Name:          name,
		Version:       version,
		MaxLineLength: maxLineLength,
		records:       make([]*RecordType, 0, len(records)),
		byCode:        make(map[rune]*RecordType, len(records)),
	}

	for i := range records {
		rt := records[i]
		rt.Fields = append([]FieldSpec(nil), rt.Fields...)

		code, ok := singleRune(rt.Code)
		if !ok {
			return nil, fmt.Errorf("record %q: code %q must be exactly one character", rt.Name, rt.Code)
		}
		if prev, exists := r.byCode[code]; exists {
			return nil, &DuplicateCodeError{Code: rt.Code, First: prev.Name, Second: rt.Name}
		}

		r.records = append(r.records, &rt)
		r.byCode[code] = &rt
	}

	return r, nil
}

// Lookup returns the record type registered for the discriminator code.
func (r *Registry) Lookup(code rune) (*RecordType, bool) {
	rt, ok := r.byCode[code]
	return rt, ok
}

// RecordTypes returns the record types in declaration order.
func (r *Registry) RecordTypes() []*RecordType {
	out := make([]*RecordType, len(r.records))
	copy(out, r.records)
	return out
}

// Codes returns the discriminator codes in declaration order.
func (r *Registry) Codes() []string {
	codes := make([]string, len(r.records))
	for i, rt := range r.records {
		codes[i] = rt.Code
	}
	return codes
}

func singleRune(s string) (rune, bool) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	c, _ := utf8.DecodeRuneInString(s)
	return c, true
}
