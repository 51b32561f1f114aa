package layout

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainLayout is the domain prefix for layout hashes.
// The version suffix allows a future algorithm migration.
const DomainLayout = "acparser/layout/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content-addressed identity of a registry.
//
// Two registries with the same record types, fields and predicates hash
// identically regardless of how they were loaded. Any change to a column
// range, rule or description yields a new hash, which callers use to
// discard scan cursors recorded against an older layout revision.
func Hash(r *Registry) (string, error) {
	data, err := MarshalCanonical(r.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("layout hash: %w", err)
	}
	return hashWithDomain(DomainLayout, data), nil
}

func (r *Registry) canonicalMap() map[string]any {
	records := make([]any, len(r.records))
	for i, rt := range r.records {
		fields := make([]any, len(rt.Fields))
		for j, f := range rt.Fields {
			fm := map[string]any{
				"begin":       f.Begin,
				"end":         f.End,
				"name":        f.Name,
				"description": f.Description,
			}
			if f.Rule != nil {
				fm["rule"] = f.Rule.canonicalMap()
			}
			fields[j] = fm
		}
		records[i] = map[string]any{
			"code":        rt.Code,
			"name":        rt.Name,
			"description": rt.Description,
			"line_length": rt.LineLength,
			"fields":      fields,
		}
	}
	return map[string]any{
		"model_version":   ModelVersion,
		"id":              r.ID,
		"name":            r.Name,
		"version":         r.Version,
		"max_line_length": r.MaxLineLength,
		"records":         records,
	}
}

func (p *Predicate) canonicalMap() map[string]any {
	m := map[string]any{
		"kind":     string(p.Kind),
		"required": p.Required,
	}
	if len(p.Values) > 0 {
		m["values"] = p.Values
	}
	if p.Pattern != "" {
		m["pattern"] = p.Pattern
	}
	if p.Format != "" {
		m["format"] = string(p.Format)
	}
	if len(p.Escapes) > 0 {
		m["escapes"] = p.Escapes
	}
	return m
}
